package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

func TestNew_IssueLayout(t *testing.T) {
	d, s := load(t, testIssue())

	want := []string{
		"Fix parser",
		"Created by: @alice",
		"Assignees: No one assigned",
		"Labels: None yet",
		"Milestone: No milestone",
		"#42 Issue · OPEN",
		"",
		MaskPrefix + "Line one",
		MaskPrefix + "Line two",
		"",
		"@bob commented",
		MaskPrefix + "Looks good",
		"",
	}
	assert.Equal(t, want, s.lines)

	spans := map[RegionKind][2]int{}
	for _, r := range d.Regions() {
		spans[r.Ref.Kind] = [2]int{r.Start, r.End}
	}
	assert.Equal(t, [2]int{0, 1}, spans[RegionTitle])
	assert.Equal(t, [2]int{1, 5}, spans[RegionDetails])
	assert.Equal(t, [2]int{5, 6}, spans[RegionState])
	assert.Equal(t, [2]int{7, 9}, spans[RegionDescription])
	assert.Equal(t, [2]int{11, 12}, spans[RegionComment])

	assert.Equal(t, "Line one\nLine two", d.Description().Body)
	assert.False(t, d.Description().Dirty())

	comments := d.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, int64(100), comments[0].ID)
	assert.Equal(t, model.CommentKindIssue, comments[0].Kind)
	assert.Equal(t, "Looks good", comments[0].Body)
	assert.False(t, comments[0].Dirty())
}

func TestNew_ReplacesExistingSurfaceContent(t *testing.T) {
	s := &fakeSurface{lines: []string{"stale", "content", "here", "x", "y", "z", "a", "b", "c", "d", "e", "f", "g", "h"}}
	name := model.SurfaceName{Scheme: "gh", Owner: "octo", Repo: "widgets", Kind: model.KindIssue, Number: 42}

	_, err := New(name, testIssue(), s)

	require.NoError(t, err)
	assert.Len(t, s.lines, 13)
	assert.Equal(t, "Fix parser", s.lines[0])
}

func TestNew_MissingIdentifier(t *testing.T) {
	s := &fakeSurface{}
	issue := testIssue()
	issue.ID = 0

	_, err := New(model.SurfaceName{Scheme: "gh", Owner: "octo", Repo: "widgets", Kind: model.KindIssue, Number: 42}, issue, s)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "gh://octo/widgets/issue/42", loadErr.Surface)
	assert.Empty(t, s.lines)
}

func TestNew_ThreadConstruction(t *testing.T) {
	d, s := load(t, testPullRequest())

	threads := d.Threads()
	require.Len(t, threads, 2)
	assert.Equal(t, 2, d.ThreadMap().Len())

	for i, want := range []struct {
		header  string
		excerpt []string
		bodies  []string
	}{
		{
			header:  "a.go:5",
			excerpt: []string{"@@ -1,5 +1,5 @@", " b", " c", " d", " e"},
			bodies:  []string{"first", "reply"},
		},
		{
			header: "b.go:2",
			bodies: []string{"second"},
		},
	} {
		th := threads[i]
		header, ok := d.Region(th.Header)
		require.True(t, ok)
		region, ok := d.Region(th.Region)
		require.True(t, ok)

		assert.Equal(t, region.Start, header.Start, "thread %d header opens the thread", i)
		assert.Equal(t, want.header, s.lines[header.Start])

		next := header.End
		for _, l := range want.excerpt {
			assert.Equal(t, l, s.lines[next])
			next++
		}

		var bodies []string
		for _, r := range d.index.Descendants(th.Region) {
			if r.Ref.Kind != RegionComment {
				continue
			}
			assert.Greater(t, r.Start, next, "comment follows the excerpt")
			assert.Less(t, r.End, region.End+1)
			c, ok := d.Comment(r.Ref.Slot)
			require.True(t, ok)
			bodies = append(bodies, c.Body)
		}
		assert.Equal(t, want.bodies, bodies)

		entry, ok := d.ThreadMap().Lookup(th.Region)
		require.True(t, ok)
		assert.Equal(t, th.ID, entry.ThreadID)
		assert.Equal(t, th.FirstCommentID, entry.FirstCommentID)
	}

	assert.Len(t, s.lines, 27)
	assert.Equal(t, "@carol reviewed · COMMENTED", s.lines[11])
	assert.Equal(t, "From: feature (abcdef1) into main (1234567)", s.lines[5])
	assert.Equal(t, "#7 Pull Request · OPEN", s.lines[7])
}

func TestNew_ReplyLinksToFirstComment(t *testing.T) {
	d, _ := load(t, testPullRequest())

	byID := map[int64]Comment{}
	for _, c := range d.Comments() {
		byID[c.ID] = c
	}

	assert.Equal(t, model.CommentKindReview, byID[10].Kind)
	assert.Zero(t, byID[201].ReplyTo)
	assert.Equal(t, int64(201), byID[202].ReplyTo)
	assert.Equal(t, "T1", byID[202].ThreadID)
	assert.Equal(t, int64(10), byID[202].ReviewID)
	assert.Zero(t, byID[301].ReplyTo)
}

func TestNew_VacuousReviewContributesNothing(t *testing.T) {
	_, with := load(t, testPullRequest())

	pr := testPullRequest()
	pr.Timeline = pr.Timeline[:1]
	_, without := load(t, pr)

	assert.Equal(t, without.lines, with.lines)

	only := testPullRequest()
	only.Timeline = only.Timeline[1:]
	d, s := load(t, only)
	assert.Len(t, s.lines, 11)
	assert.Empty(t, d.Threads())
	for _, r := range d.Regions() {
		assert.NotEqual(t, RegionReview, r.Ref.Kind)
	}
}

func TestNew_RegionsAreWellFormed(t *testing.T) {
	for _, issue := range []*model.Issue{testIssue(), testPullRequest()} {
		d, _ := load(t, issue)
		regions := d.Regions()

		requireWellFormed(t, regions)

		for _, th := range d.Threads() {
			thread, ok := d.Region(th.Region)
			require.True(t, ok)
			for _, r := range regions {
				if r.Ref.Kind != RegionComment || r.Start < thread.Start || r.Start >= thread.End {
					continue
				}
				assert.True(t, thread.encloses(r))
				assert.Greater(t, thread.Len(), r.Len())
			}
		}
	}
}

func TestNew_ThreadAt(t *testing.T) {
	d, _ := load(t, testPullRequest())

	entry, ok := d.ThreadAt(20)
	require.True(t, ok)
	assert.Equal(t, "T1", entry.ThreadID)
	assert.Equal(t, int64(201), entry.FirstCommentID)

	entry, ok = d.ThreadAt(25)
	require.True(t, ok)
	assert.Equal(t, "T2", entry.ThreadID)

	_, ok = d.ThreadAt(0)
	assert.False(t, ok)
}
