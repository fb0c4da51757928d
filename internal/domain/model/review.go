package model

import (
	"strings"
	"time"
)

// Review represents a review submitted on a pull request. Comments holds the
// review's own inline comments, used to match the review to its threads.
type Review struct {
	ID          int64
	NodeID      string
	Author      string
	State       ReviewState
	Body        string
	CommitID    string
	SubmittedAt time.Time
	Comments    []ReviewComment
}

func (*Review) timelineItem() {}

// OccurredAt returns the time the review was submitted.
func (r *Review) OccurredAt() time.Time { return r.SubmittedAt }

// HasBody reports whether the review carries a non-blank top-level body.
func (r *Review) HasBody() bool {
	return strings.TrimSpace(r.Body) != ""
}
