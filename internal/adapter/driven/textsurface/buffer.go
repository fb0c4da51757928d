// Package textsurface provides an in-memory line buffer implementing the
// driven.Surface port.
package textsurface

import (
	"slices"
	"strings"
	"sync"

	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Surface = (*Buffer)(nil)

// Buffer is a line-addressed text buffer. Out-of-range arguments are clamped
// to the buffer. It is safe for concurrent use.
type Buffer struct {
	mu    sync.RWMutex
	lines []string
}

// New creates a buffer holding a copy of lines.
func New(lines ...string) *Buffer {
	return &Buffer{lines: slices.Clone(lines)}
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Lines returns a copy of lines [start, end).
func (b *Buffer) Lines(start, end int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start, end = b.clamp(start, end)
	return slices.Clone(b.lines[start:end])
}

// SetLines replaces lines [start, end) with lines.
func (b *Buffer) SetLines(start, end int, lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start, end = b.clamp(start, end)
	b.lines = slices.Replace(b.lines, start, end, lines...)
}

// String returns the buffer joined with newlines.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

func (b *Buffer) clamp(start, end int) (int, int) {
	n := len(b.lines)
	start = max(0, min(start, n))
	end = max(start, min(end, n))
	return start, end
}
