package application_test

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

// --- Mock implementations ---

var _ driven.StateStore = (*mockStore)(nil)

type mockReader struct {
	mu           sync.Mutex
	issue        *model.Issue
	fetchErr     error
	contributors []string
	openIssues   []model.IssueRef
	fetches      int
}

func (m *mockReader) FetchIssue(_ context.Context, _ string, _ int) (*model.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.issue, nil
}

func (m *mockReader) FetchPullRequest(ctx context.Context, repo string, number int) (*model.Issue, error) {
	return m.FetchIssue(ctx, repo, number)
}

func (m *mockReader) FetchContributors(_ context.Context, _ string) ([]string, error) {
	return m.contributors, nil
}

func (m *mockReader) FetchOpenIssues(_ context.Context, _ string) ([]model.IssueRef, error) {
	return m.openIssues, nil
}

type mockWriter struct {
	mu     sync.Mutex
	calls  []string
	nextID int64
	// echo rewrites the body returned by the server.
	echo func(string) string
	err  error
	// gate, when set, blocks every call until it is closed.
	gate chan struct{}
}

func (m *mockWriter) record(call string, body string) (int64, string, error) {
	if m.gate != nil {
		<-m.gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	if m.err != nil {
		return 0, "", m.err
	}
	m.nextID++
	if m.echo != nil {
		body = m.echo(body)
	}
	return 1000 + m.nextID, body, nil
}

func (m *mockWriter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *mockWriter) UpdateIssue(_ context.Context, _ string, _ int, title, body string) (driven.IssueResult, error) {
	_, b, err := m.record("update_issue "+title, body)
	return driven.IssueResult{Title: title, Body: b}, err
}

func (m *mockWriter) UpdatePullRequest(_ context.Context, _ string, _ int, title, body string) (driven.IssueResult, error) {
	_, b, err := m.record("update_pull_request "+title, body)
	return driven.IssueResult{Title: title, Body: b}, err
}

func (m *mockWriter) CreateIssueComment(_ context.Context, _ string, _ int, body string) (driven.CommentResult, error) {
	id, b, err := m.record("create_issue_comment "+body, body)
	return driven.CommentResult{ID: id, Body: b}, err
}

func (m *mockWriter) UpdateIssueComment(_ context.Context, _ string, commentID int64, body string) (driven.CommentResult, error) {
	_, b, err := m.record(fmt.Sprintf("update_issue_comment %d %s", commentID, body), body)
	return driven.CommentResult{ID: commentID, Body: b}, err
}

func (m *mockWriter) UpdateReview(_ context.Context, _ string, _ int, reviewID int64, body string) (driven.ReviewResult, error) {
	_, b, err := m.record(fmt.Sprintf("update_review %d %s", reviewID, body), body)
	return driven.ReviewResult{ID: reviewID, Body: b}, err
}

func (m *mockWriter) UpdateReviewComment(_ context.Context, _ string, commentID int64, body string) (driven.CommentResult, error) {
	_, b, err := m.record(fmt.Sprintf("update_review_comment %d %s", commentID, body), body)
	return driven.CommentResult{ID: commentID, Body: b}, err
}

func (m *mockWriter) ReplyToReviewComment(_ context.Context, _ string, _ int, inReplyTo int64, body string) (driven.CommentResult, error) {
	id, b, err := m.record(fmt.Sprintf("reply_review_comment %d %s", inReplyTo, body), body)
	return driven.CommentResult{ID: id, Body: b}, err
}

type mockStore struct {
	mu     sync.Mutex
	states map[string]model.SurfaceState
	puts   int
}

func newMockStore() *mockStore {
	return &mockStore{states: make(map[string]model.SurfaceState)}
}

func (m *mockStore) Put(_ context.Context, s model.SurfaceState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s.Surface] = s
	m.puts++
	return nil
}

func (m *mockStore) Get(_ context.Context, surface string) (*model.SurfaceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[surface]
	if !ok {
		return nil, driven.ErrStateNotFound
	}
	return &s, nil
}

func (m *mockStore) Delete(_ context.Context, surface string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, surface)
	return nil
}

func (m *mockStore) List(_ context.Context) ([]model.SurfaceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SurfaceState, 0, len(m.states))
	for _, s := range m.states {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b model.SurfaceState) int { return strings.Compare(a.Surface, b.Surface) })
	return out, nil
}

type note struct {
	level slog.Level
	msg   string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) Notify(_ string, level slog.Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{level: level, msg: msg})
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, nt := range n.notes {
		if nt.level >= slog.LevelError {
			out = append(out, nt.msg)
		}
	}
	return out
}

func (n *recordingNotifier) Infos() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, nt := range n.notes {
		if nt.level == slog.LevelInfo {
			out = append(out, nt.msg)
		}
	}
	return out
}

// memSurface is an in-memory surface.
type memSurface struct {
	lines []string
}

func (s *memSurface) LineCount() int { return len(s.lines) }

func (s *memSurface) Lines(start, end int) []string { return slices.Clone(s.lines[start:end]) }

func (s *memSurface) SetLines(start, end int, lines []string) {
	s.lines = slices.Concat(s.lines[:start], lines, s.lines[end:])
}

func testIssue() *model.Issue {
	return &model.Issue{
		ID:           1,
		Number:       42,
		RepoFullName: "octo/widgets",
		Kind:         model.KindIssue,
		State:        model.StateOpen,
		Title:        "Fix parser",
		Body:         "Line one\nLine two",
		Author:       "alice",
		Timeline: []model.TimelineItem{
			&model.IssueComment{ID: 100, Author: "bob", Body: "Looks good"},
		},
	}
}
