package plumbago

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tsawler/plumbago/cachekey"
	"github.com/tsawler/plumbago/engine"
	"github.com/tsawler/plumbago/geometry"
	"github.com/tsawler/plumbago/model"
	"github.com/tsawler/plumbago/pages"
	"github.com/tsawler/plumbago/tablestream"
)

// PageView is a caller's view of one page. Hosts pass the geometry they
// see, which deviates from the canonical document geometry when the page
// was cropped or filtered.
type PageView struct {
	// PageIndex is the 0-based index in the document.
	PageIndex int

	// BBox is the effective bounding box of the view.
	BBox model.BBox

	// MediaBox is the page's canonical media box.
	MediaBox model.BBox

	// DocTop is the view's cumulative vertical offset.
	DocTop float64

	// Original reports whether the view matches the canonical page. A
	// cropped or filtered view extracts directly, bypassing the stream
	// caches.
	Original bool
}

func (v PageView) geometry() model.PageGeometry {
	return model.PageGeometry{
		Box:       v.BBox,
		MediaBox:  v.MediaBox,
		DocTop:    v.DocTop,
		IsCropped: !v.Original,
	}
}

// Document attaches derived-result caching to one open document. It owns
// the base geometry memo, the per-key stream caches, and the lazy page
// collection; all are torn down by Close. A Document never outlives its
// engine.
type Document struct {
	eng          engine.Engine
	ownsEngine   bool
	layout       LayoutParams
	pagesToParse []int
	window       int

	mu        sync.Mutex
	baseGeoms []model.PageGeometry
	streams   map[cachekey.Key]*tablestream.Cache
	pageColl  *pages.Collection
	closed    bool
}

// Attach wraps an open engine document.
//
//	doc := plumbago.Attach(eng, plumbago.WithPages(1, 2, 3))
//	defer doc.Close()
func Attach(eng engine.Engine, opts ...Option) *Document {
	d := &Document{
		eng:     eng,
		window:  tablestream.DefaultWindow,
		streams: make(map[cachekey.Key]*tablestream.Cache),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// pageSubset converts the 1-based page restriction to the 0-based
// indices the engine boundary speaks. Nil means all pages.
func (d *Document) pageSubset() []int {
	if d.pagesToParse == nil {
		return nil
	}
	out := make([]int, len(d.pagesToParse))
	for i, n := range d.pagesToParse {
		out[i] = n - 1
	}
	return out
}

// baseGeometries computes the canonical geometry list once per document.
func (d *Document) baseGeometries() ([]model.PageGeometry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.baseGeoms != nil {
		return d.baseGeoms, nil
	}
	geoms, err := geometry.Base(d.eng)
	if err != nil {
		return nil, err
	}
	d.baseGeoms = geoms
	return geoms, nil
}

// ExtractTables returns the tables found on the viewed page.
//
// For the canonical view of a multi-page document, the call routes
// through a per-key stream cache: the settings, layout parameters,
// per-call geometry, and page subset normalize into a cache key, and
// distinct keys extract concurrently on independent caches. A cropped or
// filtered view, or a single-page document, extracts directly; caching
// buys nothing there.
func (d *Document) ExtractTables(view PageView, settings TableSettings) (model.TableSet, error) {
	ext, ok := d.eng.(engine.TableExtractor)
	if !ok {
		return nil, fmt.Errorf("engine %T does not support table extraction", d.eng)
	}

	base, err := d.baseGeometries()
	if err != nil {
		return nil, err
	}
	if len(base) == 0 {
		return nil, engine.ErrNoPages
	}
	geoms := geometry.WithOverride(base, view.PageIndex, view.geometry())

	if !view.Original || len(base) == 1 {
		p, err := ext.MakeProducer(geoms, settings, d.layout, []int{view.PageIndex})
		if err != nil {
			return nil, err
		}
		return scanProducer(p, view.PageIndex)
	}

	subset := d.pageSubset()
	key := cachekey.New(settings, geoms, d.layout, subset)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, errClosed
	}
	cache, ok := d.streams[key]
	if !ok {
		// The factory captures this call's settings and geometry; the key
		// already accounts for both, so every run of this cache sees the
		// same inputs.
		frozenSettings := settings.Clone()
		factory := func() (engine.Producer, error) {
			return ext.MakeProducer(geoms, frozenSettings, d.layout, subset)
		}
		cache = tablestream.New(factory, d.window)
		d.streams[key] = cache
	}
	d.mu.Unlock()

	tables, _, err := cache.Get(view.PageIndex)
	return tables, err
}

// ExtractTable returns the largest table on the viewed page by total cell
// count, or nil when the page has none.
func (d *Document) ExtractTable(view PageView, settings TableSettings) (*model.Table, error) {
	tables, err := d.ExtractTables(view, settings)
	if err != nil {
		return nil, err
	}
	return tables.Largest(), nil
}

// Pages returns the document's lazy page collection, creating it on
// first use.
func (d *Document) Pages() (*pages.Collection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	if d.pageColl != nil {
		return d.pageColl, nil
	}
	coll, err := pages.New(d.eng, d.pagesToParse)
	if err != nil {
		return nil, err
	}
	d.pageColl = coll
	return coll, nil
}

var errClosed = errors.New("document is closed")

// Close tears down everything the document accumulated: the page
// collection's memoized handles, the stream caches, and, when the
// document owns its engine, the engine itself. Calling it again is a
// no-op.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if d.pageColl != nil {
		if err := d.pageColl.Close(); err != nil {
			errs = append(errs, err)
		}
		d.pageColl = nil
	}
	clear(d.streams)
	d.baseGeoms = nil

	if d.ownsEngine {
		if closer, ok := d.eng.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// scanProducer drains a one-shot producer run up to the target index.
// Overshoot proves absence since indices are non-decreasing.
func scanProducer(p engine.Producer, pageIndex int) (model.TableSet, error) {
	for {
		idx, tables, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if idx == pageIndex {
			return tables, nil
		}
		if idx > pageIndex {
			return nil, nil
		}
	}
}
