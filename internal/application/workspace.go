package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ericfisherdev/ghdoc/internal/domain/document"
	"github.com/ericfisherdev/ghdoc/internal/domain/model"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

type workspaceEntry struct {
	session *Session
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Workspace maps surface names to their sessions. Surfaces share nothing but
// the remote clients and the state store.
type Workspace struct {
	scheme     string
	reader     driven.GitHubClient
	writer     driven.GitHubWriter
	store      driven.StateStore
	notifier   Notifier
	newSurface func() driven.Surface

	mu       sync.Mutex
	sessions map[string]*workspaceEntry
}

// NewWorkspace creates a workspace that accepts surface names with the given
// scheme. newSurface creates the surface of every opened session.
func NewWorkspace(
	scheme string,
	reader driven.GitHubClient,
	writer driven.GitHubWriter,
	store driven.StateStore,
	notifier Notifier,
	newSurface func() driven.Surface,
) *Workspace {
	return &Workspace{
		scheme:     scheme,
		reader:     reader,
		writer:     writer,
		store:      store,
		notifier:   notifier,
		newSurface: newSurface,
		sessions:   make(map[string]*workspaceEntry),
	}
}

// Open returns the session for a surface name, loading it on first use.
func (w *Workspace) Open(ctx context.Context, raw string) (*Session, error) {
	name, err := model.ParseSurfaceName(raw)
	if err != nil {
		return nil, &document.LoadError{Surface: raw, Err: err}
	}
	if w.scheme != "" && name.Scheme != w.scheme {
		return nil, &document.LoadError{Surface: raw, Err: fmt.Errorf("unsupported scheme %q", name.Scheme)}
	}
	key := name.String()

	w.mu.Lock()
	if e, ok := w.sessions[key]; ok {
		w.mu.Unlock()
		return e.session, nil
	}

	s := NewSession(name, w.newSurface(), w.reader, w.writer, w.store, w.notifier)
	runCtx, cancel := context.WithCancel(context.Background())
	entry := &workspaceEntry{session: s, cancel: cancel, stopped: make(chan struct{})}
	go func() {
		defer close(entry.stopped)
		s.Run(runCtx)
	}()
	w.sessions[key] = entry
	w.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		w.remove(key)
		return nil, err
	}
	return s, nil
}

// Get returns the session of an already opened surface.
func (w *Workspace) Get(raw string) (*Session, bool) {
	name, err := model.ParseSurfaceName(raw)
	if err != nil {
		return nil, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.sessions[name.String()]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Names returns the names of all open surfaces, sorted.
func (w *Workspace) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	names := make([]string, 0, len(w.sessions))
	for name := range w.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close waits for the surface's in-flight calls, stops its session and
// deletes its persisted state.
func (w *Workspace) Close(ctx context.Context, raw string) error {
	name, err := model.ParseSurfaceName(raw)
	if err != nil {
		return &document.LoadError{Surface: raw, Err: err}
	}
	key := name.String()

	w.mu.Lock()
	e, ok := w.sessions[key]
	w.mu.Unlock()
	if !ok {
		return nil
	}

	if err := e.session.Flush(ctx); err != nil {
		return fmt.Errorf("flushing %s: %w", key, err)
	}
	w.remove(key)

	if w.store != nil {
		if err := w.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("deleting state of %s: %w", key, err)
		}
	}
	if l, ok := w.notifier.(*MessageLog); ok {
		l.Forget(key)
	}
	return nil
}

// Shutdown flushes and stops every session. Persisted state is kept.
func (w *Workspace) Shutdown(ctx context.Context) {
	for _, key := range w.Names() {
		w.mu.Lock()
		e, ok := w.sessions[key]
		w.mu.Unlock()
		if !ok {
			continue
		}
		if err := e.session.Flush(ctx); err != nil {
			slog.Warn("flush on shutdown failed", "surface", key, "error", err)
		}
		w.remove(key)
	}
}

func (w *Workspace) remove(key string) {
	w.mu.Lock()
	e, ok := w.sessions[key]
	delete(w.sessions, key)
	w.mu.Unlock()

	if ok {
		e.cancel()
		<-e.stopped
	}
}
