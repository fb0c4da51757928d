package document

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Document operations.
var (
	// ErrNotEditable indicates edit mode was requested outside an editable region.
	ErrNotEditable = errors.New("cursor is not inside an editable region")

	// ErrPendingComment indicates a new comment is already pending at the
	// requested insertion point.
	ErrPendingComment = errors.New("a new comment is already pending here")

	// ErrNoThread indicates no review thread covers the requested line.
	ErrNoThread = errors.New("no review thread under cursor")

	// ErrReviewCreate indicates an attempt to create a top-level review
	// comment, which is only possible by submitting a review.
	ErrReviewCreate = errors.New("review comments cannot be created from the document")

	// ErrReconciliationMismatch indicates a server response whose body no
	// longer matches the local body. The response is discarded.
	ErrReconciliationMismatch = errors.New("response body does not match local body")

	// ErrRegionOverlap indicates a region that partially overlaps another.
	ErrRegionOverlap = errors.New("region partially overlaps an existing region")

	// ErrUnknownSlot indicates an operation referring to a comment that does
	// not exist in this document.
	ErrUnknownSlot = errors.New("operation refers to an unknown comment")
)

// LoadError reports a surface that could not be loaded. The surface is left empty.
type LoadError struct {
	Surface string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Surface, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError reports a field value that cannot be saved.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransportError reports a failed remote call. The originating dirty state is
// left untouched so the save can be retried.
type TransportError struct {
	Op  OpKind
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
