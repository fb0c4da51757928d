package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

// ErrStateNotFound indicates no persisted state exists for a surface.
var ErrStateNotFound = errors.New("surface state not found")

// StateStore defines the driven port for per-surface state persistence.
// Put replaces the whole state of a surface.
type StateStore interface {
	Put(ctx context.Context, state model.SurfaceState) error
	// Get returns ErrStateNotFound if the surface has no persisted state.
	Get(ctx context.Context, surface string) (*model.SurfaceState, error)
	Delete(ctx context.Context, surface string) error
	List(ctx context.Context) ([]model.SurfaceState, error)
}
