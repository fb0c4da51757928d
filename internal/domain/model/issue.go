package model

import (
	"sort"
	"time"
)

// Issue is an immutable snapshot of a GitHub issue or pull request as fetched
// on load. A reload supersedes it wholesale.
type Issue struct {
	ID           int64
	NodeID       string
	Number       int
	RepoFullName string
	Kind         Kind
	State        State
	Title        string
	Body         string
	Author       string
	Labels       []string
	Assignees    []string
	Milestone    string
	Reactions    []Reaction
	Participants []string
	CreatedAt    time.Time

	// Timeline is ordered chronologically.
	Timeline      []TimelineItem
	ReviewThreads []ReviewThread

	// PullRequest is nil for plain issues.
	PullRequest *PullRequestInfo
}

// IsPullRequest reports whether the snapshot describes a pull request.
func (i *Issue) IsPullRequest() bool {
	return i.Kind == KindPull
}

// TimelineItem is a tagged union of *IssueComment and *Review.
type TimelineItem interface {
	timelineItem()
	OccurredAt() time.Time
}

// SortTimeline orders timeline items chronologically, keeping the relative
// order of items with identical timestamps.
func SortTimeline(items []TimelineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OccurredAt().Before(items[j].OccurredAt())
	})
}

// Reaction is an aggregated reaction count for one reaction content.
type Reaction struct {
	Content string // e.g. "+1", "heart", "rocket".
	Count   int
}
