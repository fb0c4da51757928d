package document

import "github.com/ericfisherdev/ghdoc/internal/domain/model"

// PlaceholderID marks a comment that has not been created remotely yet.
const PlaceholderID int64 = -1

// Field is an editable issue field (title or description).
type Field struct {
	Body      string
	SavedBody string
}

// Dirty reports whether the field differs from the last saved value.
func (f Field) Dirty() bool { return f.Body != f.SavedBody }

// Comment is a rendered comment of any kind. Dirty state is always derived
// from Body and SavedBody.
type Comment struct {
	ID        int64 // PlaceholderID until created remotely.
	Kind      model.CommentKind
	Author    string
	Body      string
	SavedBody string
	ReviewID  int64  // Owning review, for review comments.
	ThreadID  string // Owning thread, for review comments.
	ReplyTo   int64  // Database ID of the thread's first comment, for replies.
	Region    Handle
}

// Dirty reports whether the comment differs from the last saved body.
func (c Comment) Dirty() bool { return c.Body != c.SavedBody }

// IsPlaceholder reports whether the comment still awaits remote creation.
func (c Comment) IsPlaceholder() bool { return c.ID == PlaceholderID }

// Thread is the rendered header data of a review thread.
type Thread struct {
	ID             string
	Path           string
	StartLine      int
	EndLine        int
	IsOutdated     bool
	IsResolved     bool
	IsCollapsed    bool
	FirstCommentID int64
	ReviewID       int64
	Region         Handle // The whole thread span.
	Header         Handle // The thread-header line.
}

// Changes is a snapshot of everything awaiting save, in document order.
type Changes struct {
	Title       *Field
	Description *Field
	Comments    []Comment
}

// Empty reports whether nothing awaits save.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && len(c.Comments) == 0
}
