// Package document projects a remote issue or pull request onto a flat,
// line-addressed surface and tracks which lines render which entity.
package document

import (
	"errors"
	"slices"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
	"github.com/ericfisherdev/ghdoc/internal/domain/port/driven"
)

// Document is the complete rendered state of one editing surface: the
// snapshot it was built from, the region index over the surface text, the
// editable fields and comments, and the edit-mode state. It is created
// atomically on load and replaced atomically on reload.
//
// A Document is not safe for concurrent use; it is owned by a single control
// loop.
type Document struct {
	name    model.SurfaceName
	issue   *model.Issue
	surface driven.Surface
	index   *RegionIndex

	title             Field
	description       Field
	titleRegion       Handle
	descriptionRegion Handle

	// comments is replaced wholesale on every change; never mutate in place.
	comments  []Comment
	threads   []Thread
	threadMap ThreadMap
	folds     []fold

	// editing is the region in edit mode, or 0 while viewing.
	editing Handle
}

// New renders issue onto surface, replacing its whole content.
func New(name model.SurfaceName, issue *model.Issue, surface driven.Surface) (*Document, error) {
	if issue == nil || issue.ID == 0 {
		return nil, &LoadError{Surface: name.String(), Err: errors.New("remote object has no identifier")}
	}

	r, err := build(issue)
	if err != nil {
		return nil, &LoadError{Surface: name.String(), Err: err}
	}

	surface.SetLines(0, surface.LineCount(), r.lines)

	return &Document{
		name:              name,
		issue:             issue,
		surface:           surface,
		index:             r.index,
		title:             r.title,
		description:       r.description,
		titleRegion:       r.titleRegion,
		descriptionRegion: r.descriptionRegion,
		comments:          r.comments,
		threads:           r.threads,
		threadMap:         r.threadMap,
		folds:             r.folds,
	}, nil
}

// Name returns the surface name the document was loaded for.
func (d *Document) Name() model.SurfaceName { return d.name }

// Issue returns the snapshot the document was built from.
func (d *Document) Issue() *model.Issue { return d.issue }

// Title returns the title field.
func (d *Document) Title() Field { return d.title }

// Description returns the description field.
func (d *Document) Description() Field { return d.description }

// Comments returns all comments in slot order.
func (d *Document) Comments() []Comment { return slices.Clone(d.comments) }

// Comment returns the comment in slot.
func (d *Document) Comment(slot int) (Comment, bool) {
	if slot < 0 || slot >= len(d.comments) {
		return Comment{}, false
	}
	return d.comments[slot], true
}

// Threads returns the rendered review threads in render order.
func (d *Document) Threads() []Thread { return slices.Clone(d.threads) }

// ThreadMap returns the thread region map.
func (d *Document) ThreadMap() ThreadMap { return d.threadMap }

// Regions returns every region in document order.
func (d *Document) Regions() []Region { return d.index.Regions() }

// RegionAt returns the innermost region covering line.
func (d *Document) RegionAt(line int) (Region, bool) { return d.index.At(line) }

// Region returns the region for h.
func (d *Document) Region(h Handle) (Region, bool) { return d.index.Get(h) }

// ThreadAt resolves the review thread under line.
func (d *Document) ThreadAt(line int) (ThreadMapEntry, bool) {
	r, ok := d.index.Innermost(line, func(r Region) bool { return r.Ref.Kind == RegionThread })
	if !ok {
		return ThreadMapEntry{}, false
	}
	return d.threadMap.Lookup(r.Handle)
}

// Pending returns a snapshot of everything awaiting save, in document order.
func (d *Document) Pending() Changes {
	var ch Changes
	if d.title.Dirty() {
		t := d.title
		ch.Title = &t
	}
	if d.description.Dirty() {
		desc := d.description
		ch.Description = &desc
	}
	for _, slot := range d.commentOrder() {
		if c := d.comments[slot]; c.Dirty() {
			ch.Comments = append(ch.Comments, c)
		}
	}
	return ch
}

// commentOrder returns comment slots sorted by their position in the text.
func (d *Document) commentOrder() []int {
	slots := make([]int, len(d.comments))
	start := make([]int, len(d.comments))
	for i, c := range d.comments {
		slots[i] = i
		if r, ok := d.index.Get(c.Region); ok {
			start[i] = r.Start
		}
	}
	slices.SortStableFunc(slots, func(a, b int) int { return start[a] - start[b] })
	return slots
}

// updateComment replaces the comments slice with a copy in which slot has
// been modified by fn.
func (d *Document) updateComment(slot int, fn func(*Comment)) {
	next := slices.Clone(d.comments)
	fn(&next[slot])
	d.comments = next
}

// refreshBody re-reads the text of an editable region from the surface.
func (d *Document) refreshBody(r Region) {
	body := joinBody(d.surface.Lines(r.Start, r.End))
	switch r.Ref.Kind {
	case RegionTitle:
		d.title.Body = body
	case RegionDescription:
		d.description.Body = body
	case RegionComment:
		if r.Ref.Slot < len(d.comments) {
			d.updateComment(r.Ref.Slot, func(c *Comment) { c.Body = body })
		}
	}
}
