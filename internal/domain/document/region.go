package document

import (
	"fmt"
	"sort"
)

// RegionKind identifies what a region renders.
type RegionKind int

const (
	RegionTitle RegionKind = iota + 1
	RegionDetails
	RegionState
	RegionDescription
	RegionReactions
	RegionComment // Body of a comment of any CommentKind.
	RegionReview  // Review header through the end of its last thread.
	RegionThread
	RegionThreadHeader
)

var regionKindNames = map[RegionKind]string{
	RegionTitle:        "title",
	RegionDetails:      "details",
	RegionState:        "state",
	RegionDescription:  "description",
	RegionReactions:    "reactions",
	RegionComment:      "comment",
	RegionReview:       "review",
	RegionThread:       "thread",
	RegionThreadHeader: "thread_header",
}

func (k RegionKind) String() string {
	if s, ok := regionKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RegionKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k RegionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Editable reports whether regions of this kind hold user-editable text.
func (k RegionKind) Editable() bool {
	return k == RegionTitle || k == RegionDescription || k == RegionComment
}

// Handle is a stable region identifier. It survives edits anywhere in the
// document and is never reused within one RegionIndex.
type Handle int

// Ref binds a region to the entity it renders. Slot indexes the document's
// comments for RegionComment and its threads for RegionThread and
// RegionThreadHeader; it is unused otherwise.
type Ref struct {
	Kind RegionKind
	Slot int
}

// Region is a half-open, 0-based line range [Start, End) bound to an entity.
type Region struct {
	Handle Handle
	Start  int
	End    int
	Ref    Ref
}

// Len returns the number of lines in the region.
func (r Region) Len() int { return r.End - r.Start }

// Contains reports whether line falls inside the region.
func (r Region) Contains(line int) bool { return r.Start <= line && line < r.End }

// encloses reports whether o lies within r. Equal ranges enclose each other.
func (r Region) encloses(o Region) bool { return r.Start <= o.Start && o.End <= r.End }

func (r Region) disjoint(o Region) bool { return r.End <= o.Start || o.End <= r.Start }

// RegionIndex is an ordered set of regions that are either disjoint or
// strictly nested. Regions are kept sorted outer-before-inner so the last
// region covering a line is the innermost one.
type RegionIndex struct {
	regions  []*Region
	byHandle map[Handle]*Region
	next     Handle
}

// NewRegionIndex creates an empty index.
func NewRegionIndex() *RegionIndex {
	return &RegionIndex{byHandle: make(map[Handle]*Region)}
}

// Add binds [start, end) to ref and returns the new region's handle. It
// returns ErrRegionOverlap if the range partially overlaps an existing region.
func (x *RegionIndex) Add(start, end int, ref Ref) (Handle, error) {
	if start < 0 || end < start {
		return 0, fmt.Errorf("invalid region range [%d, %d)", start, end)
	}

	candidate := Region{Start: start, End: end, Ref: ref}
	for _, r := range x.regions {
		if candidate.Len() == 0 || r.Len() == 0 {
			continue
		}
		if r.disjoint(candidate) || r.encloses(candidate) || candidate.encloses(*r) {
			continue
		}
		return 0, fmt.Errorf("%w: %s [%d, %d) against %s [%d, %d)",
			ErrRegionOverlap, ref.Kind, start, end, r.Ref.Kind, r.Start, r.End)
	}

	x.next++
	candidate.Handle = x.next
	stored := &candidate
	x.byHandle[stored.Handle] = stored
	x.regions = append(x.regions, stored)
	x.sort()

	return stored.Handle, nil
}

// Get returns the region for h.
func (x *RegionIndex) Get(h Handle) (Region, bool) {
	r, ok := x.byHandle[h]
	if !ok {
		return Region{}, false
	}
	return *r, true
}

// Remove drops the region for h. Removing an unknown handle is a no-op.
func (x *RegionIndex) Remove(h Handle) {
	if _, ok := x.byHandle[h]; !ok {
		return
	}
	delete(x.byHandle, h)
	for i, r := range x.regions {
		if r.Handle == h {
			x.regions = append(x.regions[:i], x.regions[i+1:]...)
			break
		}
	}
}

// Len returns the number of regions.
func (x *RegionIndex) Len() int { return len(x.regions) }

// Regions returns a copy of all regions in document order, outer before inner.
func (x *RegionIndex) Regions() []Region {
	out := make([]Region, 0, len(x.regions))
	for _, r := range x.regions {
		out = append(out, *r)
	}
	return out
}

// At returns the innermost region covering line.
func (x *RegionIndex) At(line int) (Region, bool) {
	return x.Innermost(line, nil)
}

// Innermost returns the innermost region covering line that satisfies keep.
// A nil keep accepts every region.
func (x *RegionIndex) Innermost(line int, keep func(Region) bool) (Region, bool) {
	var found *Region
	for _, r := range x.regions {
		if r.Start > line {
			break
		}
		if r.Contains(line) && (keep == nil || keep(*r)) {
			found = r
		}
	}
	if found == nil {
		return Region{}, false
	}
	return *found, true
}

// Descendants returns the regions nested inside h, in document order.
func (x *RegionIndex) Descendants(h Handle) []Region {
	parent, ok := x.byHandle[h]
	if !ok {
		return nil
	}
	var out []Region
	for _, r := range x.regions {
		if r.Handle != h && parent.encloses(*r) && r.Len() < parent.Len() {
			out = append(out, *r)
		}
	}
	return out
}

// ancestors returns h and every region that encloses it.
func (x *RegionIndex) ancestors(h Handle) map[Handle]bool {
	child, ok := x.byHandle[h]
	if !ok {
		return nil
	}
	set := map[Handle]bool{h: true}
	for _, r := range x.regions {
		if r.Handle != h && r.encloses(*child) && r.Len() > child.Len() {
			set[r.Handle] = true
		}
	}
	return set
}

// ApplyEdit updates every region after lines [start, oldEnd) were replaced by
// lines [start, newEnd). Regions after the edit shift, regions containing it
// grow or shrink, and regions swallowed by it collapse.
//
// Lines inserted exactly at a boundary between two regions belong to
// neither: the following region shifts past them and the preceding one keeps
// its end, so only regions enclosing the boundary grow. The exception is
// owner: when the edit lies within owner (end inclusive), owner and its
// ancestors absorb it. Owner is the region being edited; pass 0 when there is
// none.
func (x *RegionIndex) ApplyEdit(start, oldEnd, newEnd int, owner Handle) {
	if start < 0 || oldEnd < start || newEnd < start {
		return
	}
	delta := newEnd - oldEnd

	var absorbing map[Handle]bool
	if o, ok := x.byHandle[owner]; ok && o.Start <= start && oldEnd <= o.End {
		absorbing = x.ancestors(owner)
	}

	mapStart := func(p int) int {
		switch {
		case p < start:
			return p
		case p >= oldEnd:
			return p + delta
		default:
			return start
		}
	}
	mapEnd := func(p int) int {
		switch {
		case p <= start:
			return p
		case p >= oldEnd:
			return p + delta
		default:
			return start
		}
	}

	for _, r := range x.regions {
		if absorbing[r.Handle] {
			r.End += delta
			continue
		}
		if r.Len() == 0 {
			p := mapEnd(r.Start)
			r.Start, r.End = p, p
			continue
		}
		r.Start, r.End = mapStart(r.Start), mapEnd(r.End)
	}

	x.sort()
}

func (x *RegionIndex) sort() {
	sort.SliceStable(x.regions, func(i, j int) bool {
		a, b := x.regions[i], x.regions[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End > b.End
		}
		return a.Handle < b.Handle
	})
}
