// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/ericfisherdev/ghdoc/internal/domain/document"
	"github.com/ericfisherdev/ghdoc/internal/domain/model"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

var (
	// ErrNotLoaded indicates an operation on a surface whose document has not
	// been loaded yet.
	ErrNotLoaded = errors.New("surface is not loaded")

	// ErrSessionClosed indicates an operation on a session whose loop has stopped.
	ErrSessionClosed = errors.New("session is closed")

	// ErrInvalidRange indicates a host edit outside the surface.
	ErrInvalidRange = errors.New("invalid line range")
)

// Session owns the document of one editing surface. Every document mutation
// runs on the session loop started by Run; remote calls run in their own
// goroutines and post their results back to the loop.
type Session struct {
	name     model.SurfaceName
	surface  driven.Surface
	reader   driven.GitHubClient
	writer   driven.GitHubWriter
	store    driven.StateStore
	notifier Notifier
	now      func() time.Time

	tasks chan func()
	done  chan struct{}

	// Loop-owned state.
	doc        *document.Document
	generation int
	taggable   []string
	issues     []model.IssueRef
	inflight   int
	waiters    []chan struct{}
}

// NewSession creates a session for one surface. store may be nil to disable
// persistence; notifier may be nil to report through slog.
func NewSession(
	name model.SurfaceName,
	surface driven.Surface,
	reader driven.GitHubClient,
	writer driven.GitHubWriter,
	store driven.StateStore,
	notifier Notifier,
) *Session {
	if notifier == nil {
		notifier = slogNotifier{}
	}
	return &Session{
		name:     name,
		surface:  surface,
		reader:   reader,
		writer:   writer,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		tasks:    make(chan func()),
		done:     make(chan struct{}),
	}
}

// Name returns the surface name of the session.
func (s *Session) Name() model.SurfaceName { return s.name }

// Run executes posted tasks until ctx is canceled. Run blocks; it must be
// called exactly once.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("session stopped", "surface", s.name.String())
			return
		case task := <-s.tasks:
			task()
		}
	}
}

// post hands task to the loop. It reports false once the loop has stopped.
// It must never be called from the loop itself.
func (s *Session) post(task func()) bool {
	select {
	case s.tasks <- task:
		return true
	case <-s.done:
		return false
	}
}

// run executes fn on the loop and waits for its result.
func (s *Session) run(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() { result <- fn() }

	select {
	case s.tasks <- task:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View runs fn against the loaded document on the loop.
func (s *Session) View(ctx context.Context, fn func(*document.Document) error) error {
	return s.run(ctx, func() error {
		if s.doc == nil {
			return ErrNotLoaded
		}
		return fn(s.doc)
	})
}

// Update runs fn against the loaded document on the loop and persists the
// resulting state.
func (s *Session) Update(ctx context.Context, fn func(*document.Document) error) error {
	return s.run(ctx, func() error {
		if s.doc == nil {
			return ErrNotLoaded
		}
		err := fn(s.doc)
		s.persist(ctx)
		return err
	})
}

// Text returns the whole surface text.
func (s *Session) Text(ctx context.Context) ([]string, error) {
	var lines []string
	err := s.run(ctx, func() error {
		lines = s.surface.Lines(0, s.surface.LineCount())
		return nil
	})
	return lines, err
}

// ReplaceLines applies a host edit: lines [start, oldEnd) are replaced by
// lines. The document is told about the change afterwards.
func (s *Session) ReplaceLines(ctx context.Context, start, oldEnd int, lines []string) error {
	return s.Update(ctx, func(d *document.Document) error {
		if start < 0 || oldEnd < start || oldEnd > s.surface.LineCount() {
			return fmt.Errorf("%w [%d, %d) for %d lines", ErrInvalidRange, start, oldEnd, s.surface.LineCount())
		}
		s.surface.SetLines(start, oldEnd, lines)
		d.LinesChanged(start, oldEnd, start+len(lines))
		return nil
	})
}

// Load fetches the remote object and replaces the document atomically. On
// failure the previous document, if any, stays in place. Completion caches
// are refreshed in the background.
func (s *Session) Load(ctx context.Context) error {
	issue, err := s.fetch(ctx)
	if err != nil {
		loadErr := &document.LoadError{Surface: s.name.String(), Err: err}
		s.notifier.Notify(s.name.String(), slog.LevelError, loadErr.Error())
		return loadErr
	}

	return s.run(ctx, func() error {
		doc, err := document.New(s.name, issue, s.surface)
		if err != nil {
			s.notifier.Notify(s.name.String(), slog.LevelError, err.Error())
			return err
		}

		s.doc = doc
		s.generation++
		s.taggable = participants(issue)
		s.issues = nil
		s.persist(ctx)
		s.refreshCaches(context.WithoutCancel(ctx), s.generation)

		slog.Info("surface loaded",
			"surface", s.name.String(),
			"comments", len(doc.Comments()),
			"threads", len(doc.Threads()),
		)
		return nil
	})
}

// Reload discards every unsaved change and loads the remote object again.
// Responses to saves dispatched before the reload are dropped.
func (s *Session) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Session) fetch(ctx context.Context) (*model.Issue, error) {
	repo := s.name.RepoFullName()
	if s.name.Kind == model.KindPull {
		return s.reader.FetchPullRequest(ctx, repo, s.name.Number)
	}
	return s.reader.FetchIssue(ctx, repo, s.name.Number)
}

// Save dispatches every pending change and returns the number of remote
// operations started. Results are applied asynchronously; use Flush to wait
// for them. Rejected steps are reported in the returned error while the
// remaining operations are still dispatched.
func (s *Session) Save(ctx context.Context) (int, error) {
	var dispatched int
	var planErr error

	err := s.run(ctx, func() error {
		if s.doc == nil {
			return ErrNotLoaded
		}

		ops, err := s.doc.Plan()
		if err != nil {
			planErr = err
			s.notifier.Notify(s.name.String(), slog.LevelError, err.Error())
		}
		if len(ops) == 0 {
			return nil
		}

		dispatched = len(ops)
		generation := s.generation
		s.spawn(func() { s.dispatch(context.WithoutCancel(ctx), generation, ops) })
		return nil
	})
	if err != nil {
		return 0, err
	}
	return dispatched, planErr
}

// dispatch executes ops in order and posts each result back to the loop.
func (s *Session) dispatch(ctx context.Context, generation int, ops []document.Operation) {
	// Only touched from posted tasks.
	var committed, failed int

	for _, op := range ops {
		commit, err := s.execute(ctx, op)
		if err != nil {
			terr := &document.TransportError{Op: op.Kind, Err: err}
			s.post(func() {
				failed++
				s.notifier.Notify(s.name.String(), slog.LevelError, terr.Error())
			})
			continue
		}

		s.post(func() {
			if generation != s.generation {
				slog.Debug("dropping response for reloaded surface", "surface", s.name.String(), "op", op.Kind.String())
				return
			}
			if err := commit(s.doc); err != nil {
				if errors.Is(err, document.ErrReconciliationMismatch) {
					slog.Debug("response does not match local body", "surface", s.name.String(), "op", op.Kind.String(), "error", err)
					return
				}
				failed++
				s.notifier.Notify(s.name.String(), slog.LevelError, err.Error())
				return
			}
			committed++
			s.persist(ctx)
		})
	}

	s.post(func() {
		if generation != s.generation || failed > 0 {
			return
		}
		s.notifier.Notify(s.name.String(), slog.LevelInfo, fmt.Sprintf("saved %d of %d change(s)", committed, len(ops)))
	})
}

// execute performs one remote operation and returns the commit to apply on
// the loop.
func (s *Session) execute(ctx context.Context, op document.Operation) (func(*document.Document) error, error) {
	repo := s.name.RepoFullName()
	number := s.name.Number

	switch op.Kind {
	case document.OpUpdateIssue, document.OpUpdatePullRequest:
		update := s.writer.UpdateIssue
		if op.Kind == document.OpUpdatePullRequest {
			update = s.writer.UpdatePullRequest
		}
		res, err := update(ctx, repo, number, op.Title, op.Body)
		if err != nil {
			return nil, err
		}
		return func(d *document.Document) error { return d.CommitIssue(op, res) }, nil

	case document.OpCreateIssueComment:
		res, err := s.writer.CreateIssueComment(ctx, repo, number, op.Body)
		if err != nil {
			return nil, err
		}
		return func(d *document.Document) error { return d.CommitComment(op, res) }, nil

	case document.OpUpdateIssueComment:
		res, err := s.writer.UpdateIssueComment(ctx, repo, op.CommentID, op.Body)
		if err != nil {
			return nil, err
		}
		return func(d *document.Document) error { return d.CommitComment(op, res) }, nil

	case document.OpUpdateReview:
		res, err := s.writer.UpdateReview(ctx, repo, number, op.CommentID, op.Body)
		if err != nil {
			return nil, err
		}
		return func(d *document.Document) error { return d.CommitReview(op, res) }, nil

	case document.OpUpdateReviewComment:
		res, err := s.writer.UpdateReviewComment(ctx, repo, op.CommentID, op.Body)
		if err != nil {
			return nil, err
		}
		return func(d *document.Document) error { return d.CommitComment(op, res) }, nil

	case document.OpReplyReviewComment:
		res, err := s.writer.ReplyToReviewComment(ctx, repo, number, op.InReplyTo, op.Body)
		if err != nil {
			return nil, err
		}
		return func(d *document.Document) error { return d.CommitComment(op, res) }, nil

	default:
		return nil, fmt.Errorf("unsupported operation %s", op.Kind)
	}
}

// Flush waits until every dispatched remote call has been applied on the loop.
func (s *Session) Flush(ctx context.Context) error {
	var settled chan struct{}
	err := s.run(ctx, func() error {
		if s.inflight == 0 {
			return nil
		}
		settled = make(chan struct{})
		s.waiters = append(s.waiters, settled)
		return nil
	})
	if err != nil || settled == nil {
		return err
	}

	select {
	case <-settled:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn runs fn in its own goroutine and counts it as in flight until fn
// returns. It must be called on the loop. fn's posted results are applied
// before the call is retired, since posts from one goroutine stay in order.
func (s *Session) spawn(fn func()) {
	s.inflight++
	go func() {
		fn()
		s.post(s.settle)
	}()
}

// settle retires one in-flight call and releases every Flush waiting for the
// count to reach zero.
func (s *Session) settle() {
	s.inflight--
	if s.inflight > 0 {
		return
	}
	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

// Caches returns the taggable users and open issues known for the surface.
func (s *Session) Caches(ctx context.Context) ([]string, []model.IssueRef, error) {
	var users []string
	var issues []model.IssueRef
	err := s.run(ctx, func() error {
		users = slices.Clone(s.taggable)
		issues = slices.Clone(s.issues)
		return nil
	})
	return users, issues, err
}

// State returns the document state as it is persisted.
func (s *Session) State(ctx context.Context) (model.SurfaceState, error) {
	var state model.SurfaceState
	err := s.run(ctx, func() error {
		if s.doc == nil {
			return ErrNotLoaded
		}
		state = s.doc.State(s.taggable, s.issues, s.now())
		return nil
	})
	return state, err
}

// refreshCaches fetches completion data in the background. Results are merged
// into whatever the loop already holds, so concurrent fetches never drop
// each other's entries.
func (s *Session) refreshCaches(ctx context.Context, generation int) {
	repo := s.name.RepoFullName()

	s.spawn(func() {
		users, err := s.reader.FetchContributors(ctx, repo)
		if err != nil {
			slog.Warn("fetch contributors failed", "repo", repo, "error", err)
			return
		}
		s.post(func() {
			if generation != s.generation {
				return
			}
			s.taggable = mergeUsers(s.taggable, users)
			s.persist(ctx)
		})
	})

	s.spawn(func() {
		issues, err := s.reader.FetchOpenIssues(ctx, repo)
		if err != nil {
			slog.Warn("fetch open issues failed", "repo", repo, "error", err)
			return
		}
		s.post(func() {
			if generation != s.generation {
				return
			}
			s.issues = mergeIssues(s.issues, issues)
			s.persist(ctx)
		})
	})
}

// persist writes the state projection. Failures are logged; they never fail
// the operation that triggered them.
func (s *Session) persist(ctx context.Context) {
	if s.store == nil || s.doc == nil {
		return
	}
	state := s.doc.State(s.taggable, s.issues, s.now())
	if err := s.store.Put(ctx, state); err != nil {
		slog.Error("persist surface state failed", "surface", s.name.String(), "error", err)
	}
}

// participants collects every login that appears on the issue.
func participants(issue *model.Issue) []string {
	logins := []string{issue.Author}
	logins = append(logins, issue.Participants...)
	logins = append(logins, issue.Assignees...)

	for _, item := range issue.Timeline {
		switch v := item.(type) {
		case *model.IssueComment:
			logins = append(logins, v.Author)
		case *model.Review:
			logins = append(logins, v.Author)
		}
	}
	for _, t := range issue.ReviewThreads {
		for _, c := range t.Comments {
			logins = append(logins, c.Author)
		}
	}

	return mergeUsers(nil, logins)
}

func mergeUsers(current, more []string) []string {
	seen := make(map[string]bool, len(current)+len(more))
	out := make([]string, 0, len(current)+len(more))
	for _, l := range slices.Concat(current, more) {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func mergeIssues(current, more []model.IssueRef) []model.IssueRef {
	byNumber := make(map[int]model.IssueRef, len(current)+len(more))
	for _, ref := range current {
		byNumber[ref.Number] = ref
	}
	for _, ref := range more {
		byNumber[ref.Number] = ref
	}

	out := make([]model.IssueRef, 0, len(byNumber))
	for _, ref := range byNumber {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
