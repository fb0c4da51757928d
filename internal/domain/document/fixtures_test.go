package document

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

// fakeSurface is an in-memory surface.
type fakeSurface struct {
	lines []string
}

func (s *fakeSurface) LineCount() int { return len(s.lines) }

func (s *fakeSurface) Lines(start, end int) []string {
	return slices.Clone(s.lines[start:end])
}

func (s *fakeSurface) SetLines(start, end int, lines []string) {
	s.lines = slices.Concat(s.lines[:start], lines, s.lines[end:])
}

// hostEdit replaces lines [start, oldEnd) the way an editor would and reports
// the change to the document.
func hostEdit(d *Document, s *fakeSurface, start, oldEnd int, lines ...string) {
	s.SetLines(start, oldEnd, lines)
	d.LinesChanged(start, oldEnd, start+len(lines))
}

func testIssue() *model.Issue {
	return &model.Issue{
		ID:           1,
		Number:       42,
		RepoFullName: "octo/widgets",
		Kind:         model.KindIssue,
		State:        model.StateOpen,
		Title:        "Fix parser",
		Body:         "Line one\r\nLine two",
		Author:       "alice",
		Timeline: []model.TimelineItem{
			&model.IssueComment{ID: 100, Author: "bob", Body: "Looks good"},
		},
	}
}

func testPullRequest() *model.Issue {
	return &model.Issue{
		ID:           2,
		Number:       7,
		RepoFullName: "octo/widgets",
		Kind:         model.KindPull,
		State:        model.StateOpen,
		Title:        "Add feature",
		Author:       "alice",
		PullRequest: &model.PullRequestInfo{
			HeadRef: "feature",
			HeadSHA: "abcdef1234",
			BaseRef: "main",
			BaseSHA: "1234567890",
		},
		Timeline: []model.TimelineItem{
			&model.Review{
				ID:       10,
				Author:   "carol",
				State:    model.ReviewStateCommented,
				Comments: []model.ReviewComment{{ID: 201}, {ID: 301}},
			},
			&model.Review{
				ID:       11,
				Author:   "erin",
				State:    model.ReviewStateCommented,
				Body:     "  ",
				Comments: []model.ReviewComment{{ID: 999}},
			},
		},
		ReviewThreads: []model.ReviewThread{
			{
				ID:           "T1",
				Path:         "a.go",
				OriginalLine: 5,
				Comments: []model.ReviewComment{
					{ID: 201, ReviewID: 10, Author: "carol", Body: "first", DiffHunk: "@@ -1,5 +1,5 @@\n a\n b\n c\n d\n e"},
					{ID: 202, ReviewID: 10, Author: "dave", Body: "reply", InReplyToID: ptr(int64(201))},
				},
			},
			{
				ID:           "T2",
				Path:         "b.go",
				OriginalLine: 2,
				IsCollapsed:  true,
				Comments: []model.ReviewComment{
					{ID: 301, ReviewID: 10, Author: "carol", Body: "second"},
				},
			},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func load(t *testing.T, issue *model.Issue) (*Document, *fakeSurface) {
	t.Helper()

	s := &fakeSurface{}
	name := model.SurfaceName{Scheme: "gh", Owner: "octo", Repo: "widgets", Kind: issue.Kind, Number: issue.Number}
	d, err := New(name, issue, s)
	require.NoError(t, err)
	return d, s
}

// requireWellFormed checks that every pair of regions is disjoint or nested.
func requireWellFormed(t *testing.T, regions []Region) {
	t.Helper()

	for i, a := range regions {
		for _, b := range regions[i+1:] {
			if a.Len() == 0 || b.Len() == 0 {
				continue
			}
			ok := a.disjoint(b) || a.encloses(b) || b.encloses(a)
			require.Truef(t, ok, "%s [%d, %d) partially overlaps %s [%d, %d)",
				a.Ref.Kind, a.Start, a.End, b.Ref.Kind, b.Start, b.End)
		}
	}
}
