package model

// ReviewThread is a diff discussion anchored to a file range. The first comment
// has no reply-to target, carries the diff hunk and identifies the thread when
// matching threads to reviews.
type ReviewThread struct {
	ID                string // GraphQL node ID.
	Path              string
	OriginalStartLine int // Zero when the thread anchors a single line.
	OriginalLine      int
	IsOutdated        bool
	IsResolved        bool
	IsCollapsed       bool
	Comments          []ReviewComment
}

// FirstComment returns the thread's root comment, or false for an empty thread.
func (t ReviewThread) FirstComment() (ReviewComment, bool) {
	if len(t.Comments) == 0 {
		return ReviewComment{}, false
	}
	return t.Comments[0], true
}

// LineRange returns the anchor range of the thread in the original diff.
func (t ReviewThread) LineRange() (start, end int) {
	start = t.OriginalStartLine
	if start == 0 {
		start = t.OriginalLine
	}
	return start, t.OriginalLine
}
