package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shurcooL/githubv4"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

// reviewThreadsPerPage and threadCommentsPerPage bound one GraphQL page.
// Threads longer than threadCommentsPerPage are truncated.
const (
	reviewThreadsPerPage  = 50
	threadCommentsPerPage = 100
)

type reviewThreadComment struct {
	ID                githubv4.ID
	DatabaseID        int64 `graphql:"databaseId"`
	Body              githubv4.String
	DiffHunk          githubv4.String
	Path              githubv4.String
	CreatedAt         githubv4.DateTime
	UpdatedAt         githubv4.DateTime
	Author            struct{ Login githubv4.String }
	PullRequestReview struct {
		DatabaseID int64 `graphql:"databaseId"`
	}
	ReplyTo *struct {
		DatabaseID int64 `graphql:"databaseId"`
	}
}

type reviewThreadNode struct {
	ID                githubv4.ID
	Path              githubv4.String
	OriginalLine      *githubv4.Int
	OriginalStartLine *githubv4.Int
	IsOutdated        githubv4.Boolean
	IsResolved        githubv4.Boolean
	IsCollapsed       githubv4.Boolean
	Comments          struct {
		Nodes []reviewThreadComment
	} `graphql:"comments(first: $commentsPerPage)"`
}

type reviewThreadsQuery struct {
	Repository struct {
		PullRequest struct {
			ReviewThreads struct {
				Nodes    []reviewThreadNode
				PageInfo struct {
					EndCursor   githubv4.String
					HasNextPage githubv4.Boolean
				}
			} `graphql:"reviewThreads(first: $threadsPerPage, after: $cursor)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// fetchReviewThreads retrieves every review thread of a pull request, in the
// order GitHub lists them.
func (c *Client) fetchReviewThreads(ctx context.Context, owner, repo string, number int) ([]model.ReviewThread, error) {
	variables := map[string]any{
		"owner":           githubv4.String(owner),
		"name":            githubv4.String(repo),
		"number":          githubv4.Int(number),
		"threadsPerPage":  githubv4.Int(reviewThreadsPerPage),
		"commentsPerPage": githubv4.Int(threadCommentsPerPage),
		"cursor":          (*githubv4.String)(nil),
	}

	threads := []model.ReviewThread{}
	for page := 1; ; page++ {
		var q reviewThreadsQuery
		if err := c.v4.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("querying review threads for %s/%s#%d (page %d): %w", owner, repo, number, page, err)
		}

		rt := q.Repository.PullRequest.ReviewThreads
		for _, n := range rt.Nodes {
			threads = append(threads, mapReviewThread(n))
		}

		slog.Debug("github graphql call",
			"endpoint", owner+"/"+repo+"/review-threads",
			"page", page,
			"count", len(rt.Nodes),
		)

		if !rt.PageInfo.HasNextPage {
			break
		}
		cursor := rt.PageInfo.EndCursor
		variables["cursor"] = githubv4.NewString(cursor)
	}

	return threads, nil
}

func mapReviewThread(n reviewThreadNode) model.ReviewThread {
	t := model.ReviewThread{
		ID:          fmt.Sprint(n.ID),
		Path:        string(n.Path),
		IsOutdated:  bool(n.IsOutdated),
		IsResolved:  bool(n.IsResolved),
		IsCollapsed: bool(n.IsCollapsed),
	}
	if n.OriginalLine != nil {
		t.OriginalLine = int(*n.OriginalLine)
	}
	if n.OriginalStartLine != nil {
		t.OriginalStartLine = int(*n.OriginalStartLine)
	}

	for _, c := range n.Comments.Nodes {
		rc := model.ReviewComment{
			ID:        c.DatabaseID,
			NodeID:    fmt.Sprint(c.ID),
			ReviewID:  c.PullRequestReview.DatabaseID,
			Author:    string(c.Author.Login),
			Body:      string(c.Body),
			Path:      string(c.Path),
			DiffHunk:  string(c.DiffHunk),
			CreatedAt: c.CreatedAt.Time,
			UpdatedAt: c.UpdatedAt.Time,
		}
		if c.ReplyTo != nil {
			id := c.ReplyTo.DatabaseID
			rc.InReplyToID = &id
		}
		t.Comments = append(t.Comments, rc)
	}

	return t
}
