package document

import (
	"cmp"
	"slices"

	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

// Extent is a styled span of the surface. Comment bodies carry their kind
// and whether they await save.
type Extent struct {
	Kind        RegionKind        `json:"kind"`
	CommentKind model.CommentKind `json:"commentKind,omitempty"`
	Start       int               `json:"start"`
	End         int               `json:"end"`
	Dirty       bool              `json:"dirty,omitempty"`
}

// Fold is a collapsible line span.
type Fold struct {
	Start int  `json:"start"`
	End   int  `json:"end"`
	Open  bool `json:"open"`
}

// Decorations is everything a host needs to style the surface.
type Decorations struct {
	Extents []Extent `json:"extents"`
	Folds   []Fold   `json:"folds"`
}

// Extents returns a styled span for every non-empty region, outer before inner.
func (d *Document) Extents() []Extent {
	regions := d.index.Regions()
	out := make([]Extent, 0, len(regions))
	for _, r := range regions {
		if r.Len() == 0 {
			continue
		}
		e := Extent{Kind: r.Ref.Kind, Start: r.Start, End: r.End}
		switch r.Ref.Kind {
		case RegionTitle:
			e.Dirty = d.title.Dirty()
		case RegionDescription:
			e.Dirty = d.description.Dirty()
		case RegionComment:
			if c, ok := d.Comment(r.Ref.Slot); ok {
				e.CommentKind = c.Kind
				e.Dirty = c.Dirty()
			}
		}
		out = append(out, e)
	}
	return out
}

// Folds returns the collapsible spans in document order. Spans are computed
// from live region positions, so they follow every edit.
func (d *Document) Folds() []Fold {
	out := make([]Fold, 0, len(d.folds))
	for _, f := range d.folds {
		r, ok := d.index.Get(f.region)
		if !ok || r.Len() == 0 {
			continue
		}
		start := max(r.Start-f.lead, 0)
		out = append(out, Fold{Start: start, End: r.End, Open: f.open})
	}
	sortFolds(out)
	return out
}

// Decorations returns extents and folds together.
func (d *Document) Decorations() Decorations {
	return Decorations{Extents: d.Extents(), Folds: d.Folds()}
}

func sortFolds(folds []Fold) {
	slices.SortStableFunc(folds, func(a, b Fold) int {
		if a.Start != b.Start {
			return cmp.Compare(a.Start, b.Start)
		}
		return cmp.Compare(b.End, a.End)
	})
}
