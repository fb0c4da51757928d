package model

// Kind distinguishes issues from pull requests. The string form matches the
// type segment of a surface name.
type Kind string

const (
	KindIssue Kind = "issue"
	KindPull  Kind = "pull"
)

// State represents the state of an issue or pull request.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged" // Pull requests only.
)

// ReviewState represents the state of a submitted review.
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStatePending          ReviewState = "pending"
	ReviewStateDismissed        ReviewState = "dismissed"
)

// CommentKind distinguishes the remote entity a comment body belongs to. It
// selects which create/update mutation applies on save.
type CommentKind string

const (
	CommentKindIssue         CommentKind = "issue_comment"  // Issue / PR-level discussion.
	CommentKindReview        CommentKind = "review"         // Top-level body of a review.
	CommentKindReviewComment CommentKind = "review_comment" // Comment inside a review thread.
)
