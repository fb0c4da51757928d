// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

// GitHubClient defines the driven port for reading remote objects.
// Implementations aggregate pagination before returning; callers always
// receive complete snapshots.
type GitHubClient interface {
	// FetchIssue returns the issue snapshot including its comment timeline.
	FetchIssue(ctx context.Context, repoFullName string, number int) (*model.Issue, error)
	// FetchPullRequest returns the pull request snapshot including issue
	// comments, reviews with their own comments, and all review threads.
	FetchPullRequest(ctx context.Context, repoFullName string, number int) (*model.Issue, error)

	// FetchContributors returns repository contributor logins. Best effort,
	// used only for mention completion.
	FetchContributors(ctx context.Context, repoFullName string) ([]string, error)
	// FetchOpenIssues returns the repository's open issue index. Best effort,
	// used only for reference completion.
	FetchOpenIssues(ctx context.Context, repoFullName string) ([]model.IssueRef, error)
}
