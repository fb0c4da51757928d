package document

// Edit mode is a two-state machine: viewing, or editing one region. Entering
// strips the mask from the region's lines; leaving re-reads the body and
// masks the lines again. The title is never masked.

// Editing returns the region currently in edit mode.
func (d *Document) Editing() (Region, bool) {
	if d.editing == 0 {
		return Region{}, false
	}
	return d.index.Get(d.editing)
}

// EnterEdit switches to editing the innermost editable region covering line.
// Outside any editable region it returns ErrNotEditable and changes nothing;
// the host must then refuse to enter its insert state.
func (d *Document) EnterEdit(line int) (Region, error) {
	r, ok := d.index.Innermost(line, func(r Region) bool { return r.Ref.Kind.Editable() })
	if !ok {
		return Region{}, ErrNotEditable
	}

	if d.editing == r.Handle {
		return r, nil
	}
	d.LeaveEdit()

	if r.Ref.Kind != RegionTitle {
		d.surface.SetLines(r.Start, r.End, unmaskLines(d.surface.Lines(r.Start, r.End)))
	}
	d.editing = r.Handle
	return r, nil
}

// LeaveEdit returns to viewing. It is a no-op while viewing.
func (d *Document) LeaveEdit() {
	if d.editing == 0 {
		return
	}
	r, ok := d.index.Get(d.editing)
	d.editing = 0
	if !ok {
		return
	}

	d.refreshBody(r)
	if r.Ref.Kind != RegionTitle {
		d.surface.SetLines(r.Start, r.End, maskLines(d.surface.Lines(r.Start, r.End)))
	}
}

// LinesChanged records a host edit: lines [start, oldEnd) of the surface were
// replaced by lines [start, newEnd). Regions are shifted with the region in
// edit mode absorbing boundary insertions, and every editable region touching
// the new lines has its body re-read.
func (d *Document) LinesChanged(start, oldEnd, newEnd int) {
	d.index.ApplyEdit(start, oldEnd, newEnd, d.editing)

	for _, r := range d.index.Regions() {
		if !r.Ref.Kind.Editable() {
			continue
		}
		if r.Handle == d.editing || (r.Start <= newEnd && start <= r.End) {
			d.refreshBody(r)
		}
	}
}
