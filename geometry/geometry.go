// Package geometry derives per-page geometry for a document: each page's
// boxes plus its cumulative vertical offset (doctop) within the document.
//
// The base geometry list is computed in a single pass over the engine's
// media boxes and is meant to be cached once per document; per-call
// overrides substitute a single page's geometry when the caller's view of
// that page deviates from the canonical document box.
package geometry

import (
	"github.com/tsawler/plumbago/engine"
	"github.com/tsawler/plumbago/model"
)

// Base computes the canonical geometry for every page of the document.
// DocTop accumulates as the running sum of page heights, so the first
// page's doctop is 0 and the sequence is non-decreasing. Engine failures
// are wrapped in an *engine.Error and propagated; the computation is never
// retried here.
func Base(eng engine.Engine) ([]model.PageGeometry, error) {
	boxes, err := eng.PageMediaboxes()
	if err != nil {
		return nil, engine.Wrap("page_mediaboxes", err)
	}

	geoms := make([]model.PageGeometry, len(boxes))
	running := 0.0
	for i, box := range boxes {
		geoms[i] = model.PageGeometry{
			Box:      box,
			MediaBox: box,
			DocTop:   running,
		}
		running += box.Height
	}
	return geoms, nil
}

// WithOverride returns a copy of base with the observed geometry
// substituted at pageIndex, when it differs from the canonical entry.
// At most one entry changes; all others are returned as-is. Out-of-range
// indices leave the copy untouched. The input slice is never mutated.
//
// The full copy is deliberate: geometry lists are small relative to
// document content, and a copy keeps the cached base immutable.
func WithOverride(base []model.PageGeometry, pageIndex int, observed model.PageGeometry) []model.PageGeometry {
	geoms := make([]model.PageGeometry, len(base))
	copy(geoms, base)
	if pageIndex >= 0 && pageIndex < len(geoms) && geoms[pageIndex] != observed {
		geoms[pageIndex] = observed
	}
	return geoms
}
