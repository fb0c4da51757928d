// Package github implements the GitHubClient and GitHubWriter ports using the
// go-github REST client and the githubv4 GraphQL client.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// maxOpenIssuePages bounds the open-issue listing used for completion.
const maxOpenIssuePages = 5

// Client implements the driven.GitHubClient and driven.GitHubWriter ports.
type Client struct {
	gh *gh.Client
	v4 *githubv4.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth) and githubv4 (GraphQL
//     API client authenticated through an oauth2 static token source)
func NewClient(token string) *Client {
	rateLimitClient := newTransportClient()

	return &Client{
		gh: gh.NewClient(rateLimitClient).WithAuthToken(token),
		v4: githubv4.NewClient(newGraphQLHTTPClient(rateLimitClient, token)),
	}
}

// NewEnterpriseClient creates a Client for a GitHub Enterprise Server
// instance rooted at baseURL, with the same transport stack as NewClient.
func NewEnterpriseClient(token, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("parsing enterprise URL %q: invalid host", baseURL)
	}

	rateLimitClient := newTransportClient()
	client, err := gh.NewClient(rateLimitClient).WithAuthToken(token).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("configuring enterprise URLs: %w", err)
	}

	graphqlURL := u.Scheme + "://" + u.Host + "/api/graphql"
	return &Client{
		gh: client,
		v4: githubv4.NewEnterpriseClient(graphqlURL, newGraphQLHTTPClient(rateLimitClient, token)),
	}, nil
}

func newTransportClient() *http.Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	return github_ratelimit.NewClient(cacheTransport)
}

func newGraphQLHTTPClient(base *http.Client, token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return oauth2.NewClient(ctx, src)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
// GraphQL requests go to baseURL + "graphql".
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	client.BaseURL = u

	graphqlU := *u
	graphqlU.Path += "graphql"

	return &Client{
		gh: client,
		v4: githubv4.NewEnterpriseClient(graphqlU.String(), httpClient),
	}, nil
}

// FetchIssue retrieves an issue with its comments.
func (c *Client) FetchIssue(ctx context.Context, repoFullName string, number int) (*model.Issue, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	var (
		issue    *model.Issue
		comments []model.IssueComment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		i, resp, err := c.gh.Issues.Get(gctx, owner, repo, number)
		if err != nil {
			return fmt.Errorf("getting issue %s#%d: %w", repoFullName, number, err)
		}
		logRateLimit(resp, repoFullName+"/issue", 0, 1)
		issue = mapIssue(i, repoFullName)
		return nil
	})
	g.Go(func() error {
		var err error
		comments, err = c.fetchIssueComments(gctx, owner, repo, repoFullName, number)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	issue.Kind = model.KindIssue
	assembleTimeline(issue, comments, nil)
	return issue, nil
}

// FetchPullRequest retrieves a pull request with its issue comments, reviews,
// review comments and review threads. The sub-resources are fetched
// concurrently; any failure fails the whole fetch.
func (c *Client) FetchPullRequest(ctx context.Context, repoFullName string, number int) (*model.Issue, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	var (
		issue          *model.Issue
		pr             *gh.PullRequest
		comments       []model.IssueComment
		reviews        []model.Review
		reviewComments []model.ReviewComment
		threads        []model.ReviewThread
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		i, resp, err := c.gh.Issues.Get(gctx, owner, repo, number)
		if err != nil {
			return fmt.Errorf("getting issue %s#%d: %w", repoFullName, number, err)
		}
		logRateLimit(resp, repoFullName+"/issue", 0, 1)
		issue = mapIssue(i, repoFullName)
		return nil
	})
	g.Go(func() error {
		p, resp, err := c.gh.PullRequests.Get(gctx, owner, repo, number)
		if err != nil {
			return fmt.Errorf("getting pull request %s#%d: %w", repoFullName, number, err)
		}
		logRateLimit(resp, repoFullName+"/pull", 0, 1)
		pr = p
		return nil
	})
	g.Go(func() error {
		var err error
		comments, err = c.fetchIssueComments(gctx, owner, repo, repoFullName, number)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = c.fetchReviews(gctx, owner, repo, repoFullName, number)
		return err
	})
	g.Go(func() error {
		var err error
		reviewComments, err = c.fetchReviewComments(gctx, owner, repo, repoFullName, number)
		return err
	})
	g.Go(func() error {
		var err error
		threads, err = c.fetchReviewThreads(gctx, owner, repo, number)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	issue.Kind = model.KindPull
	issue.PullRequest = mapPullRequestInfo(pr)
	if pr.GetMerged() {
		issue.State = model.StateMerged
	}

	byReview := make(map[int64][]model.ReviewComment)
	for _, rc := range reviewComments {
		byReview[rc.ReviewID] = append(byReview[rc.ReviewID], rc)
	}
	for i := range reviews {
		reviews[i].Comments = byReview[reviews[i].ID]
	}

	issue.ReviewThreads = threads
	assembleTimeline(issue, comments, reviews)
	return issue, nil
}

func (c *Client) fetchIssueComments(ctx context.Context, owner, repo, repoFullName string, number int) ([]model.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: 100}}
	var all []model.IssueComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issue comments for %s#%d (page %d): %w", repoFullName, number, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/comments", opts.Page, len(comments))

		for _, ic := range comments {
			all = append(all, mapIssueComment(ic))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (c *Client) fetchReviews(ctx context.Context, owner, repo, repoFullName string, number int) ([]model.Review, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var all []model.Review

	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing reviews for %s#%d (page %d): %w", repoFullName, number, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/reviews", opts.Page, len(reviews))

		for _, r := range reviews {
			all = append(all, mapReview(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (c *Client) fetchReviewComments(ctx context.Context, owner, repo, repoFullName string, number int) ([]model.ReviewComment, error) {
	opts := &gh.PullRequestListCommentsOptions{ListOptions: gh.ListOptions{PerPage: 100}}
	var all []model.ReviewComment

	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing review comments for %s#%d (page %d): %w", repoFullName, number, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/review-comments", opts.Page, len(comments))

		for _, rc := range comments {
			all = append(all, mapReviewComment(rc))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// FetchContributors returns the logins of the repository's contributors.
func (c *Client) FetchContributors(ctx context.Context, repoFullName string) ([]string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListContributorsOptions{ListOptions: gh.ListOptions{PerPage: 100}}
	logins := []string{}

	for {
		contributors, resp, err := c.gh.Repositories.ListContributors(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing contributors for %s (page %d): %w", repoFullName, opts.Page, err)
		}

		logRateLimit(resp, repoFullName+"/contributors", opts.Page, len(contributors))

		for _, ct := range contributors {
			if login := ct.GetLogin(); login != "" {
				logins = append(logins, login)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return logins, nil
}

// FetchOpenIssues returns the open issues and pull requests of the repository,
// most recently updated first.
func (c *Client) FetchOpenIssues(ctx context.Context, repoFullName string) ([]model.IssueRef, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListByRepoOptions{
		State:       "open",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	refs := []model.IssueRef{}

	for page := 0; page < maxOpenIssuePages; page++ {
		issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing open issues for %s (page %d): %w", repoFullName, opts.ListOptions.Page, err)
		}

		logRateLimit(resp, repoFullName+"/issues", opts.ListOptions.Page, len(issues))

		for _, i := range issues {
			refs = append(refs, model.IssueRef{Number: i.GetNumber(), Title: i.GetTitle()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	return refs, nil
}

// assembleTimeline merges comments and reviews chronologically and derives
// the participant list.
func assembleTimeline(issue *model.Issue, comments []model.IssueComment, reviews []model.Review) {
	items := make([]model.TimelineItem, 0, len(comments)+len(reviews))
	seen := map[string]bool{}
	addParticipant := func(login string) {
		if login != "" && !seen[login] {
			seen[login] = true
			issue.Participants = append(issue.Participants, login)
		}
	}

	addParticipant(issue.Author)
	for i := range comments {
		items = append(items, &comments[i])
		addParticipant(comments[i].Author)
	}
	for i := range reviews {
		items = append(items, &reviews[i])
		addParticipant(reviews[i].Author)
	}

	model.SortTimeline(items)
	issue.Timeline = items
}

func mapIssue(i *gh.Issue, repoFullName string) *model.Issue {
	issue := &model.Issue{
		ID:           i.GetID(),
		NodeID:       i.GetNodeID(),
		Number:       i.GetNumber(),
		RepoFullName: repoFullName,
		State:        model.State(strings.ToLower(i.GetState())),
		Title:        i.GetTitle(),
		Body:         i.GetBody(),
		Author:       i.GetUser().GetLogin(),
		Milestone:    i.GetMilestone().GetTitle(),
		Reactions:    mapReactions(i.GetReactions()),
		CreatedAt:    i.GetCreatedAt().Time,
	}

	for _, l := range i.Labels {
		issue.Labels = append(issue.Labels, l.GetName())
	}
	for _, a := range i.Assignees {
		issue.Assignees = append(issue.Assignees, a.GetLogin())
	}

	return issue
}

func mapPullRequestInfo(pr *gh.PullRequest) *model.PullRequestInfo {
	return &model.PullRequestInfo{
		IsDraft:  pr.GetDraft(),
		HeadRef:  pr.GetHead().GetRef(),
		HeadSHA:  pr.GetHead().GetSHA(),
		BaseRef:  pr.GetBase().GetRef(),
		BaseSHA:  pr.GetBase().GetSHA(),
		BaseRepo: pr.GetBase().GetRepo().GetFullName(),
	}
}

func mapReview(r *gh.PullRequestReview) model.Review {
	return model.Review{
		ID:          r.GetID(),
		NodeID:      r.GetNodeID(),
		Author:      r.GetUser().GetLogin(),
		State:       model.ReviewState(strings.ToLower(r.GetState())),
		Body:        r.GetBody(),
		CommitID:    r.GetCommitID(),
		SubmittedAt: r.GetSubmittedAt().Time,
	}
}

func mapReviewComment(c *gh.PullRequestComment) model.ReviewComment {
	rc := model.ReviewComment{
		ID:        c.GetID(),
		NodeID:    c.GetNodeID(),
		ReviewID:  c.GetPullRequestReviewID(),
		Author:    c.GetUser().GetLogin(),
		Body:      c.GetBody(),
		Path:      c.GetPath(),
		DiffHunk:  c.GetDiffHunk(),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
	if c.InReplyTo != nil {
		rc.InReplyToID = gh.Ptr(c.GetInReplyTo())
	}
	return rc
}

func mapIssueComment(c *gh.IssueComment) model.IssueComment {
	return model.IssueComment{
		ID:        c.GetID(),
		NodeID:    c.GetNodeID(),
		Author:    c.GetUser().GetLogin(),
		Body:      c.GetBody(),
		Reactions: mapReactions(c.GetReactions()),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}

func mapReactions(r *gh.Reactions) []model.Reaction {
	if r == nil {
		return nil
	}

	counts := []model.Reaction{
		{Content: "+1", Count: r.GetPlusOne()},
		{Content: "-1", Count: r.GetMinusOne()},
		{Content: "laugh", Count: r.GetLaugh()},
		{Content: "hooray", Count: r.GetHooray()},
		{Content: "confused", Count: r.GetConfused()},
		{Content: "heart", Count: r.GetHeart()},
		{Content: "rocket", Count: r.GetRocket()},
		{Content: "eyes", Count: r.GetEyes()},
	}

	var out []model.Reaction
	for _, rc := range counts {
		if rc.Count > 0 {
			out = append(out, rc)
		}
	}
	return out
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
