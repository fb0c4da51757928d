package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

const timestampLayout = "2006-01-02 15:04"

// reactionEmoji maps GitHub reaction contents to their rendered glyphs, in
// the order GitHub displays them.
var reactionEmoji = []struct {
	content string
	emoji   string
}{
	{"+1", "👍"},
	{"-1", "👎"},
	{"laugh", "😄"},
	{"hooray", "🎉"},
	{"confused", "😕"},
	{"heart", "❤️"},
	{"rocket", "🚀"},
	{"eyes", "👀"},
}

// fold is a collapsible span derived from a live region. lead is the number
// of chrome lines above the region that belong to the fold.
type fold struct {
	region Handle
	lead   int
	open   bool
}

// rendering is the output of a build: surface text plus everything bound to it.
type rendering struct {
	lines             []string
	index             *RegionIndex
	title             Field
	description       Field
	titleRegion       Handle
	descriptionRegion Handle
	comments          []Comment
	threads           []Thread
	threadMap         ThreadMap
	folds             []fold
}

// builder renders an issue snapshot into a line accumulator, registering
// regions in render order as lines are emitted.
type builder struct {
	issue *model.Issue
	out   rendering
	err   error
}

func build(issue *model.Issue) (*rendering, error) {
	b := &builder{
		issue: issue,
		out: rendering{
			index:     NewRegionIndex(),
			threadMap: newThreadMap(),
		},
	}

	b.renderHeader()
	for _, item := range issue.Timeline {
		switch v := item.(type) {
		case *model.IssueComment:
			b.renderIssueComment(v)
		case *model.Review:
			b.renderReview(v)
		}
	}

	if b.err != nil {
		return nil, b.err
	}
	return &b.out, nil
}

func (b *builder) line() int { return len(b.out.lines) }

func (b *builder) emit(lines ...string) {
	b.out.lines = append(b.out.lines, lines...)
}

func (b *builder) add(start int, ref Ref) Handle {
	if b.err != nil {
		return 0
	}
	h, err := b.out.index.Add(start, b.line(), ref)
	if err != nil {
		b.err = err
	}
	return h
}

func (b *builder) renderHeader() {
	issue := b.issue

	title := normalizeNewlines(issue.Title)
	b.emit(strings.Split(title, "\n")...)
	b.out.title = Field{Body: title, SavedBody: title}
	b.out.titleRegion = b.add(0, Ref{Kind: RegionTitle})

	start := b.line()
	b.emit(detailLines(issue)...)
	b.add(start, Ref{Kind: RegionDetails})

	start = b.line()
	b.emit(stateBanner(issue))
	b.add(start, Ref{Kind: RegionState})
	b.emit("")

	body := normalizeNewlines(issue.Body)
	start = b.line()
	b.emit(maskLines(splitBody(body))...)
	b.out.description = Field{Body: body, SavedBody: body}
	b.out.descriptionRegion = b.add(start, Ref{Kind: RegionDescription})

	if r := formatReactions(issue.Reactions); r != "" {
		start = b.line()
		b.emit(r)
		b.add(start, Ref{Kind: RegionReactions})
	}
	b.emit("")
}

func (b *builder) renderIssueComment(c *model.IssueComment) {
	b.emit(commentHeader(c.Author, "commented", "", c.CreatedAt))
	h := b.addComment(Comment{
		ID:     c.ID,
		Kind:   model.CommentKindIssue,
		Author: c.Author,
	}, c.Body)
	b.out.folds = append(b.out.folds, fold{region: h, lead: 1, open: true})

	if r := formatReactions(c.Reactions); r != "" {
		b.emit(r)
	}
	b.emit("")
}

func (b *builder) renderReview(r *model.Review) {
	threads := matchThreads(r, b.issue.ReviewThreads)
	if len(threads) == 0 && !r.HasBody() {
		return
	}

	start := b.line()
	b.emit(commentHeader(r.Author, "reviewed", reviewStateLabel(r.State), r.SubmittedAt))
	b.addComment(Comment{
		ID:       r.ID,
		Kind:     model.CommentKindReview,
		Author:   r.Author,
		ReviewID: r.ID,
	}, r.Body)

	for _, t := range threads {
		b.renderThread(t, r.ID)
	}

	h := b.add(start, Ref{Kind: RegionReview})
	b.out.folds = append(b.out.folds, fold{region: h, open: true})
	b.emit("")
}

func (b *builder) renderThread(t model.ReviewThread, reviewID int64) {
	first, _ := t.FirstComment()
	slot := len(b.out.threads)
	startLine, endLine := t.LineRange()

	start := b.line()
	b.emit(threadHeader(t.Path, startLine, endLine, t.IsOutdated, t.IsResolved))
	header := b.add(start, Ref{Kind: RegionThreadHeader, Slot: slot})
	b.emit(excerptHunk(first.DiffHunk, startLine, endLine)...)

	for _, c := range t.Comments {
		b.emit(commentHeader(c.Author, "commented", "", c.CreatedAt))
		comment := Comment{
			ID:       c.ID,
			Kind:     model.CommentKindReviewComment,
			Author:   c.Author,
			ReviewID: c.ReviewID,
			ThreadID: t.ID,
		}
		if c.ID != first.ID {
			comment.ReplyTo = first.ID
		}
		h := b.addComment(comment, c.Body)
		b.out.folds = append(b.out.folds, fold{region: h, lead: 1, open: true})
	}

	region := b.add(start, Ref{Kind: RegionThread, Slot: slot})
	b.out.threads = append(b.out.threads, Thread{
		ID:             t.ID,
		Path:           t.Path,
		StartLine:      startLine,
		EndLine:        endLine,
		IsOutdated:     t.IsOutdated,
		IsResolved:     t.IsResolved,
		IsCollapsed:    t.IsCollapsed,
		FirstCommentID: first.ID,
		ReviewID:       reviewID,
		Region:         region,
		Header:         header,
	})
	b.out.threadMap.set(region, ThreadMapEntry{ThreadID: t.ID, FirstCommentID: first.ID})
	b.out.folds = append(b.out.folds, fold{region: region, open: !t.IsCollapsed})
}

// addComment emits a masked body and binds it to a new comment slot.
func (b *builder) addComment(c Comment, body string) Handle {
	body = normalizeNewlines(body)
	start := b.line()
	b.emit(maskLines(splitBody(body))...)

	c.Body = body
	c.SavedBody = body
	c.Region = b.add(start, Ref{Kind: RegionComment, Slot: len(b.out.comments)})
	b.out.comments = append(b.out.comments, c)
	return c.Region
}

// matchThreads returns the threads whose first comment is one of the
// review's own comments, in the order of threads.
func matchThreads(r *model.Review, threads []model.ReviewThread) []model.ReviewThread {
	if len(r.Comments) == 0 {
		return nil
	}
	own := make(map[int64]bool, len(r.Comments))
	for _, c := range r.Comments {
		own[c.ID] = true
	}

	var matched []model.ReviewThread
	for _, t := range threads {
		first, ok := t.FirstComment()
		if ok && own[first.ID] {
			matched = append(matched, t)
		}
	}
	return matched
}

func detailLines(issue *model.Issue) []string {
	lines := []string{
		"Created by: " + mention(issue.Author),
		"Assignees: " + listOr(mentions(issue.Assignees), "No one assigned"),
		"Labels: " + listOr(issue.Labels, "None yet"),
		"Milestone: " + valueOr(issue.Milestone, "No milestone"),
	}

	if pr := issue.PullRequest; pr != nil {
		lines = append(lines,
			fmt.Sprintf("From: %s (%s) into %s (%s)", pr.HeadRef, shortSHA(pr.HeadSHA), pr.BaseRef, shortSHA(pr.BaseSHA)),
			"Repository: "+valueOr(pr.BaseRepo, issue.RepoFullName),
		)
	}
	return lines
}

func stateBanner(issue *model.Issue) string {
	kind := "Issue"
	if issue.IsPullRequest() {
		kind = "Pull Request"
	}
	banner := fmt.Sprintf("#%d %s · %s", issue.Number, kind, strings.ToUpper(string(issue.State)))
	if issue.PullRequest != nil && issue.PullRequest.IsDraft {
		banner += " · DRAFT"
	}
	return banner
}

func commentHeader(author, verb, state string, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(mention(author))
	sb.WriteByte(' ')
	sb.WriteString(verb)
	if state != "" {
		sb.WriteString(" · ")
		sb.WriteString(state)
	}
	if !at.IsZero() {
		sb.WriteByte(' ')
		sb.WriteString(at.UTC().Format(timestampLayout))
	}
	return sb.String()
}

func threadHeader(path string, start, end int, outdated, resolved bool) string {
	header := fmt.Sprintf("%s:%d", path, start)
	if end != start {
		header = fmt.Sprintf("%s:%d-%d", path, start, end)
	}
	if outdated {
		header += " [outdated]"
	}
	if resolved {
		header += " [resolved]"
	}
	return header
}

func reviewStateLabel(s model.ReviewState) string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

func formatReactions(reactions []model.Reaction) string {
	counts := make(map[string]int, len(reactions))
	for _, r := range reactions {
		counts[r.Content] += r.Count
	}

	var parts []string
	for _, re := range reactionEmoji {
		if n := counts[re.content]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", re.emoji, n))
		}
	}
	return strings.Join(parts, "  ")
}

func mention(login string) string {
	if login == "" {
		return "@ghost"
	}
	return "@" + login
}

func mentions(logins []string) []string {
	out := make([]string, 0, len(logins))
	for _, l := range logins {
		out = append(out, mention(l))
	}
	return out
}

func listOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
