package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StateStore = (*StateRepo)(nil)

// StateRepo is the SQLite implementation of the StateStore port interface.
// Each surface's state is stored as one JSON document keyed by surface name,
// with the lookup columns duplicated alongside it.
type StateRepo struct {
	db *DB
}

// NewStateRepo creates a new StateRepo backed by the given DB.
func NewStateRepo(db *DB) *StateRepo {
	return &StateRepo{db: db}
}

// Put replaces the stored state of a surface.
func (r *StateRepo) Put(ctx context.Context, s model.SurfaceState) error {
	const query = `
		INSERT INTO surface_states (surface, repo_full_name, number, kind, dirty, state_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(surface) DO UPDATE SET
			repo_full_name = excluded.repo_full_name,
			number = excluded.number,
			kind = excluded.kind,
			dirty = excluded.dirty,
			state_json = excluded.state_json,
			updated_at = excluded.updated_at
	`

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", s.Surface, err)
	}

	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		s.Surface, s.Repo, s.Number, string(s.Kind), hasDirty(s), string(data), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("put state for %s: %w", s.Surface, err)
	}

	return nil
}

// Get returns the stored state of a surface, or driven.ErrStateNotFound.
func (r *StateRepo) Get(ctx context.Context, surface string) (*model.SurfaceState, error) {
	const query = `SELECT state_json FROM surface_states WHERE surface = ?`

	var data string
	err := r.db.Reader.QueryRowContext(ctx, query, surface).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get state for %s: %w", surface, driven.ErrStateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get state for %s: %w", surface, err)
	}

	var s model.SurfaceState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", surface, err)
	}

	return &s, nil
}

// Delete removes the stored state of a surface. Deleting an unknown surface
// is a no-op.
func (r *StateRepo) Delete(ctx context.Context, surface string) error {
	const query = `DELETE FROM surface_states WHERE surface = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, surface); err != nil {
		return fmt.Errorf("delete state for %s: %w", surface, err)
	}

	return nil
}

// List returns every stored state, ordered by surface name.
func (r *StateRepo) List(ctx context.Context) ([]model.SurfaceState, error) {
	const query = `SELECT surface, state_json FROM surface_states ORDER BY surface`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer rows.Close()

	states := []model.SurfaceState{}
	for rows.Next() {
		var surface, data string
		if err := rows.Scan(&surface, &data); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}

		var s model.SurfaceState
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, fmt.Errorf("decode state for %s: %w", surface, err)
		}
		states = append(states, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state rows: %w", err)
	}

	return states, nil
}

// ListDirty returns the names of surfaces whose stored state has unsaved
// changes, sorted.
func (r *StateRepo) ListDirty(ctx context.Context) ([]string, error) {
	const query = `SELECT surface FROM surface_states WHERE dirty = 1 ORDER BY surface`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list dirty states: %w", err)
	}
	defer rows.Close()

	surfaces := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		surfaces = append(surfaces, s)
	}

	return surfaces, rows.Err()
}

func hasDirty(s model.SurfaceState) bool {
	if s.Title.Dirty || s.Description.Dirty {
		return true
	}
	for _, c := range s.Comments {
		if c.Dirty {
			return true
		}
	}
	return false
}
