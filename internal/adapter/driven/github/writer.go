package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubWriter = (*Client)(nil)

// UpdateIssue replaces the title and body of an issue.
func (c *Client) UpdateIssue(ctx context.Context, repoFullName string, number int, title, body string) (driven.IssueResult, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return driven.IssueResult{}, err
	}

	issue, resp, err := c.gh.Issues.Edit(ctx, owner, repo, number, &gh.IssueRequest{
		Title: gh.Ptr(title),
		Body:  gh.Ptr(body),
	})
	if err != nil {
		return driven.IssueResult{}, fmt.Errorf("updating issue %s#%d: %w", repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/edit-issue", 0, 1)
	return driven.IssueResult{Title: issue.GetTitle(), Body: issue.GetBody()}, nil
}

// UpdatePullRequest replaces the title and body of a pull request.
func (c *Client) UpdatePullRequest(ctx context.Context, repoFullName string, number int, title, body string) (driven.IssueResult, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return driven.IssueResult{}, err
	}

	pr, resp, err := c.gh.PullRequests.Edit(ctx, owner, repo, number, &gh.PullRequest{
		Title: gh.Ptr(title),
		Body:  gh.Ptr(body),
	})
	if err != nil {
		return driven.IssueResult{}, fmt.Errorf("updating pull request %s#%d: %w", repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/edit-pull", 0, 1)
	return driven.IssueResult{Title: pr.GetTitle(), Body: pr.GetBody()}, nil
}

// CreateIssueComment adds an issue-level comment. On pull requests this is a
// general, non-diff comment.
func (c *Client) CreateIssueComment(ctx context.Context, repoFullName string, number int, body string) (driven.CommentResult, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return driven.CommentResult{}, err
	}

	comment, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return driven.CommentResult{}, fmt.Errorf("creating comment on %s#%d: %w", repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/create-comment", 0, 1)
	return driven.CommentResult{ID: comment.GetID(), Body: comment.GetBody()}, nil
}

// UpdateIssueComment replaces the body of an issue-level comment.
func (c *Client) UpdateIssueComment(ctx context.Context, repoFullName string, commentID int64, body string) (driven.CommentResult, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return driven.CommentResult{}, err
	}

	comment, resp, err := c.gh.Issues.EditComment(ctx, owner, repo, commentID, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return driven.CommentResult{}, fmt.Errorf("updating comment %d on %s: %w", commentID, repoFullName, err)
	}

	logRateLimit(resp, repoFullName+"/edit-comment", 0, 1)
	return driven.CommentResult{ID: comment.GetID(), Body: comment.GetBody()}, nil
}

// UpdateReview replaces the top-level body of a submitted review.
func (c *Client) UpdateReview(ctx context.Context, repoFullName string, number int, reviewID int64, body string) (driven.ReviewResult, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return driven.ReviewResult{}, err
	}

	review, resp, err := c.gh.PullRequests.UpdateReview(ctx, owner, repo, number, reviewID, body)
	if err != nil {
		return driven.ReviewResult{}, fmt.Errorf("updating review %d on %s#%d: %w", reviewID, repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/edit-review", 0, 1)
	return driven.ReviewResult{ID: review.GetID(), Body: review.GetBody()}, nil
}

// UpdateReviewComment replaces the body of a diff comment.
func (c *Client) UpdateReviewComment(ctx context.Context, repoFullName string, commentID int64, body string) (driven.CommentResult, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return driven.CommentResult{}, err
	}

	comment, resp, err := c.gh.PullRequests.EditComment(ctx, owner, repo, commentID, &gh.PullRequestComment{Body: gh.Ptr(body)})
	if err != nil {
		return driven.CommentResult{}, fmt.Errorf("updating review comment %d on %s: %w", commentID, repoFullName, err)
	}

	logRateLimit(resp, repoFullName+"/edit-review-comment", 0, 1)
	return driven.CommentResult{ID: comment.GetID(), Body: comment.GetBody()}, nil
}

// ReplyToReviewComment replies to an existing review thread.
// inReplyTo must be the database ID of the thread's first comment.
func (c *Client) ReplyToReviewComment(ctx context.Context, repoFullName string, number int, inReplyTo int64, body string) (driven.CommentResult, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return driven.CommentResult{}, err
	}

	comment, resp, err := c.gh.PullRequests.CreateCommentInReplyTo(ctx, owner, repo, number, body, inReplyTo)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity {
			return driven.CommentResult{}, fmt.Errorf("thread of comment %d no longer accepts replies; reload and try again: %w", inReplyTo, err)
		}
		return driven.CommentResult{}, fmt.Errorf("replying to comment %d on %s#%d: %w", inReplyTo, repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/reply-comment", 0, 1)
	return driven.CommentResult{ID: comment.GetID(), Body: comment.GetBody()}, nil
}
