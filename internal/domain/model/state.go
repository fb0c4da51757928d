package model

import "time"

// SurfaceState is the per-surface state persisted for other components
// (completion, navigation, decoration). It is a projection of the live
// document and is rewritten wholesale on every change.
type SurfaceState struct {
	Surface         string                    `json:"surface"`
	ID              int64                     `json:"id"`
	Number          int                       `json:"number"`
	Repo            string                    `json:"repo"`
	Kind            Kind                      `json:"kind"`
	State           State                     `json:"state"`
	Labels          []string                  `json:"labels"`
	Assignees       []string                  `json:"assignees"`
	Milestone       string                    `json:"milestone"`
	Cards           []string                  `json:"cards"`
	Title           FieldState                `json:"title"`
	Description     FieldState                `json:"description"`
	Comments        []CommentState            `json:"comments"`
	PullRequest     *PullRequestInfo          `json:"pr,omitempty"`
	ReviewThreadMap map[string]ThreadMapState `json:"reviewThreadMap"`
	TaggableUsers   []string                  `json:"taggableUsers"`
	Issues          []IssueRef                `json:"issues"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

// FieldState is the persisted form of an editable issue field.
type FieldState struct {
	Body      string `json:"body"`
	SavedBody string `json:"savedBody"`
	Dirty     bool   `json:"dirty"`
}

// CommentState is the persisted form of a rendered comment.
type CommentState struct {
	ID        int64       `json:"id"`
	Kind      CommentKind `json:"kind"`
	Author    string      `json:"author"`
	Body      string      `json:"body"`
	SavedBody string      `json:"savedBody"`
	Dirty     bool        `json:"dirty"`
	ReviewID  int64       `json:"reviewId,omitempty"`
	ThreadID  string      `json:"threadId,omitempty"`
	ReplyTo   int64       `json:"replyTo,omitempty"`
	StartLine int         `json:"startLine"`
	EndLine   int         `json:"endLine"`
}

// ThreadMapState is the persisted form of a thread map entry.
type ThreadMapState struct {
	ThreadID       string `json:"threadId"`
	FirstCommentID int64  `json:"firstCommentId"`
}
