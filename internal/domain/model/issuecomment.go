package model

import "time"

// IssueComment represents an issue-level comment (GitHub Issues API). On pull
// requests these are the general, non-diff discussion comments.
type IssueComment struct {
	ID        int64
	NodeID    string
	Author    string
	Body      string
	Reactions []Reaction
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*IssueComment) timelineItem() {}

// OccurredAt returns the time the comment was created.
func (c *IssueComment) OccurredAt() time.Time { return c.CreatedAt }
