package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/ghdoc/internal/application"
	"github.com/ericfisherdev/ghdoc/internal/domain/document"
	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

type sessionFixture struct {
	session  *application.Session
	reader   *mockReader
	writer   *mockWriter
	store    *mockStore
	notifier *recordingNotifier
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		reader: &mockReader{
			issue:        testIssue(),
			contributors: []string{"zed", "bob"},
			openIssues:   []model.IssueRef{{Number: 7, Title: "Crash on start"}},
		},
		writer:   &mockWriter{},
		store:    newMockStore(),
		notifier: &recordingNotifier{},
	}

	name, err := model.ParseSurfaceName("gh://octo/widgets/issue/42")
	require.NoError(t, err)
	f.session = application.NewSession(name, &memSurface{}, f.reader, f.writer, f.store, f.notifier)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.session.Run(ctx)

	return f
}

func (f *sessionFixture) load(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Load(context.Background()))
}

func (f *sessionFixture) edit(t *testing.T, line int, lines ...string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.session.Update(ctx, func(d *document.Document) error {
		_, err := d.EnterEdit(line)
		return err
	}))
	require.NoError(t, f.session.ReplaceLines(ctx, line, line+1, lines))
}

func (f *sessionFixture) flush(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.session.Flush(ctx))
}

func (f *sessionFixture) pending(t *testing.T) document.Changes {
	t.Helper()

	var ch document.Changes
	require.NoError(t, f.session.View(context.Background(), func(d *document.Document) error {
		ch = d.Pending()
		return nil
	}))
	return ch
}

func TestSession_LoadRendersAndPersists(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)
	f.flush(t)

	lines, err := f.session.Text(context.Background())
	require.NoError(t, err)
	assert.Len(t, lines, 13)
	assert.Equal(t, "Fix parser", lines[0])

	state, err := f.store.Get(context.Background(), "gh://octo/widgets/issue/42")
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.ID)
	assert.Equal(t, []string{"alice", "bob", "zed"}, state.TaggableUsers)
	assert.Equal(t, []model.IssueRef{{Number: 7, Title: "Crash on start"}}, state.Issues)
}

func TestSession_StateReflectsEdits(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)
	f.edit(t, 11, "LGTM")

	state, err := f.session.State(context.Background())
	require.NoError(t, err)

	require.Len(t, state.Comments, 1)
	assert.True(t, state.Comments[0].Dirty)
	assert.Equal(t, "LGTM", state.Comments[0].Body)
	assert.Equal(t, "gh://octo/widgets/issue/42", state.Surface)
}

func TestSession_CachesMergeByUnion(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)
	f.flush(t)

	f.reader.contributors = []string{"yan"}
	f.reader.openIssues = []model.IssueRef{{Number: 3, Title: "Docs"}}
	require.NoError(t, f.session.Reload(context.Background()))
	f.flush(t)

	users, issues, err := f.session.Caches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "yan"}, users, "reload starts from the new snapshot")
	assert.Equal(t, []model.IssueRef{{Number: 3, Title: "Docs"}}, issues)
}

func TestSession_OperationsBeforeLoad(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.session.Save(context.Background())

	require.ErrorIs(t, err, application.ErrNotLoaded)
}

func TestSession_LoadFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.reader.fetchErr = errors.New("not found")

	err := f.session.Load(context.Background())

	var loadErr *document.LoadError
	require.ErrorAs(t, err, &loadErr)
	lines, err := f.session.Text(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Len(t, f.notifier.Errors(), 1)
}

func TestSession_SaveRoundTrip(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)
	f.edit(t, 11, "LGTM")

	n, err := f.session.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.flush(t)

	assert.Equal(t, []string{"update_issue_comment 100 LGTM"}, f.writer.Calls())
	assert.True(t, f.pending(t).Empty())
	assert.Contains(t, f.notifier.Infos(), "saved 1 of 1 change(s)")

	n, err = f.session.Save(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "a second save dispatches nothing")
	f.flush(t)
	assert.Len(t, f.writer.Calls(), 1)

	state, err := f.store.Get(context.Background(), "gh://octo/widgets/issue/42")
	require.NoError(t, err)
	require.Len(t, state.Comments, 1)
	assert.Equal(t, "LGTM", state.Comments[0].SavedBody)
	assert.False(t, state.Comments[0].Dirty)
}

func TestSession_CreateComment(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)

	var start int
	require.NoError(t, f.session.Update(context.Background(), func(d *document.Document) error {
		r, err := d.AddIssueComment()
		start = r.Start
		return err
	}))
	f.edit(t, start, "LGTM")

	_, err := f.session.Save(context.Background())
	require.NoError(t, err)
	f.flush(t)

	require.NoError(t, f.session.View(context.Background(), func(d *document.Document) error {
		c, _ := d.Comment(1)
		assert.Equal(t, int64(1001), c.ID)
		assert.False(t, c.Dirty())
		return nil
	}))
}

func TestSession_MismatchKeepsDirty(t *testing.T) {
	f := newSessionFixture(t)
	f.writer.echo = func(string) string { return "lgtm." }
	f.load(t)
	f.edit(t, 11, "LGTM")

	_, err := f.session.Save(context.Background())
	require.NoError(t, err)
	f.flush(t)

	ch := f.pending(t)
	require.Len(t, ch.Comments, 1)
	assert.Equal(t, "LGTM", ch.Comments[0].Body)
	assert.Empty(t, f.notifier.Errors(), "mismatches are not reported as errors")
}

func TestSession_TransportErrorKeepsDirty(t *testing.T) {
	f := newSessionFixture(t)
	f.writer.err = errors.New("502 bad gateway")
	f.load(t)
	f.edit(t, 11, "LGTM")

	_, err := f.session.Save(context.Background())
	require.NoError(t, err)
	f.flush(t)

	assert.Len(t, f.pending(t).Comments, 1)
	errs := f.notifier.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "update issue comment failed")
}

func TestSession_InvalidTitleStillSavesComments(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)
	f.edit(t, 11, "LGTM")
	f.edit(t, 0, "")

	n, err := f.session.Save(context.Background())

	var verr *document.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, n)
	f.flush(t)
	assert.Equal(t, []string{"update_issue_comment 100 LGTM"}, f.writer.Calls())
	assert.NotNil(t, f.pending(t).Title)
}

func TestSession_ReloadDropsStaleResponses(t *testing.T) {
	f := newSessionFixture(t)
	f.writer.gate = make(chan struct{})
	f.load(t)

	var start int
	require.NoError(t, f.session.Update(context.Background(), func(d *document.Document) error {
		r, err := d.AddIssueComment()
		start = r.Start
		return err
	}))
	f.edit(t, start, "LGTM")
	_, err := f.session.Save(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.session.Reload(context.Background()))
	close(f.writer.gate)
	f.flush(t)

	assert.Equal(t, []string{"create_issue_comment LGTM"}, f.writer.Calls())
	assert.Empty(t, f.notifier.Errors())
	require.NoError(t, f.session.View(context.Background(), func(d *document.Document) error {
		assert.Len(t, d.Comments(), 1)
		assert.True(t, d.Pending().Empty())
		return nil
	}))
}

func TestSession_SaveWhileFlushing(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stop := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	for range 4 {
		g.Go(func() error {
			for {
				select {
				case <-stop:
					return nil
				default:
				}
				if err := f.session.Flush(gctx); err != nil {
					return err
				}
			}
		})
	}

	const saves = 50
	for i := range saves {
		f.edit(t, 11, fmt.Sprintf("LGTM %d", i))
		n, err := f.session.Save(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.NoError(t, f.session.Flush(ctx))
	}
	close(stop)

	require.NoError(t, g.Wait())
	assert.Len(t, f.writer.Calls(), saves)
	assert.True(t, f.pending(t).Empty())
	assert.Empty(t, f.notifier.Errors())
}

func TestSession_FlushWaitsForEveryDispatch(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)
	f.flush(t)
	f.writer.gate = make(chan struct{})
	f.edit(t, 11, "LGTM")

	_, err := f.session.Save(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, f.session.Flush(ctx), context.DeadlineExceeded)

	close(f.writer.gate)
	f.flush(t)
	assert.True(t, f.pending(t).Empty())
}

func TestSession_ReplaceLinesRejectsBadRange(t *testing.T) {
	f := newSessionFixture(t)
	f.load(t)

	err := f.session.ReplaceLines(context.Background(), 5, 99, nil)

	require.ErrorIs(t, err, application.ErrInvalidRange)
}

func TestSession_ClosedLoop(t *testing.T) {
	name, err := model.ParseSurfaceName("gh://octo/widgets/issue/42")
	require.NoError(t, err)
	s := application.NewSession(name, &memSurface{}, &mockReader{issue: testIssue()}, &mockWriter{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	_, err = s.Text(context.Background())
	require.ErrorIs(t, err, application.ErrSessionClosed)
}
