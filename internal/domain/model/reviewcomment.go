package model

import "time"

// ReviewComment represents a comment on a specific line within a pull request review.
type ReviewComment struct {
	ID          int64
	NodeID      string
	ReviewID    int64
	Author      string
	Body        string
	Path        string
	DiffHunk    string
	InReplyToID *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsReply reports whether the comment answers another comment in its thread.
func (c ReviewComment) IsReply() bool {
	return c.InReplyToID != nil
}
