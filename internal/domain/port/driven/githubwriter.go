package driven

import "context"

// IssueResult is the typed response of an issue or pull request update.
type IssueResult struct {
	Title string
	Body  string
}

// CommentResult is the typed response of an issue comment or review comment
// create/update mutation.
type CommentResult struct {
	ID   int64
	Body string
}

// ReviewResult is the typed response of a review body update.
type ReviewResult struct {
	ID   int64
	Body string
}

// GitHubWriter defines the driven port for GitHub write operations.
// It is intentionally separate from GitHubClient (read operations) following
// the Interface Segregation Principle. Every method returns the body echoed
// by the server so callers can reconcile it against local edits.
type GitHubWriter interface {
	// UpdateIssue replaces the title and body of an issue.
	UpdateIssue(ctx context.Context, repoFullName string, number int, title, body string) (IssueResult, error)
	// UpdatePullRequest replaces the title and body of a pull request.
	UpdatePullRequest(ctx context.Context, repoFullName string, number int, title, body string) (IssueResult, error)

	// CreateIssueComment creates a top-level (non-diff) comment.
	CreateIssueComment(ctx context.Context, repoFullName string, number int, body string) (CommentResult, error)
	// UpdateIssueComment edits an existing issue comment.
	UpdateIssueComment(ctx context.Context, repoFullName string, commentID int64, body string) (CommentResult, error)

	// UpdateReview edits the top-level body of a submitted review.
	UpdateReview(ctx context.Context, repoFullName string, number int, reviewID int64, body string) (ReviewResult, error)
	// UpdateReviewComment edits an existing comment inside a review thread.
	UpdateReviewComment(ctx context.Context, repoFullName string, commentID int64, body string) (CommentResult, error)
	// ReplyToReviewComment appends a reply to a review thread.
	// inReplyTo must be the database ID of the thread's first comment.
	ReplyToReviewComment(ctx context.Context, repoFullName string, number int, inReplyTo int64, body string) (CommentResult, error)
}
