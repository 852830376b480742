package pages

import (
	"errors"
	"fmt"

	"github.com/tsawler/plumbago/engine"
	"github.com/tsawler/plumbago/model"
)

// Page is a materialized page wrapper. It carries the page's external
// number, its cumulative vertical offset within the collection's filtered
// view, and the engine handle backing it.
type Page struct {
	// Number is the 1-based page number in the document.
	Number int

	// DocTop is the cumulative vertical offset of this page within the
	// filtered view. Filtering changes offsets, so this is distinct from
	// the canonical document doctop.
	DocTop float64

	handle engine.PageHandle
}

// BBox returns the page's effective bounding box.
func (p *Page) BBox() model.BBox { return p.handle.BBox() }

// MediaBox returns the page's canonical media box.
func (p *Page) MediaBox() model.BBox { return p.handle.MediaBox() }

// Close releases the underlying engine handle.
func (p *Page) Close() error { return p.handle.Close() }

// Collection is a lazy, slice-capable view over a document's pages,
// optionally restricted to a 1-based subset.
type Collection struct {
	eng         engine.Engine
	pageIndices []int // canonical 0-based indices, ascending
	indexSet    map[int]struct{}
	memo        map[int]*Page // keyed by canonical index
	doctops     []float64     // per filtered position; nil until first use
}

// New builds a collection over the engine's pages. pagesToParse restricts
// the view to the given 1-based page numbers, preserving ascending
// document order; nil means every page. A document with no pages is an
// error.
func New(eng engine.Engine, pagesToParse []int) (*Collection, error) {
	count, err := eng.PageCount()
	if err != nil {
		return nil, engine.Wrap("page_count", err)
	}
	if count <= 0 {
		return nil, engine.ErrNoPages
	}

	var indices []int
	if pagesToParse == nil {
		indices = make([]int, count)
		for i := range indices {
			indices[i] = i
		}
	} else {
		allowed := make(map[int]struct{}, len(pagesToParse))
		for _, n := range pagesToParse {
			allowed[n] = struct{}{}
		}
		for i := 0; i < count; i++ {
			if _, ok := allowed[i+1]; ok {
				indices = append(indices, i)
			}
		}
	}

	indexSet := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		indexSet[idx] = struct{}{}
	}

	return &Collection{
		eng:         eng,
		pageIndices: indices,
		indexSet:    indexSet,
		memo:        make(map[int]*Page),
	}, nil
}

// Len returns the number of pages in the (filtered) view.
func (c *Collection) Len() int { return len(c.pageIndices) }

// ensureDoctops computes the filtered cumulative offsets once.
func (c *Collection) ensureDoctops() error {
	if c.doctops != nil {
		return nil
	}
	boxes, err := c.eng.PageMediaboxes()
	if err != nil {
		return engine.Wrap("page_mediaboxes", err)
	}

	doctops := make([]float64, 0, len(c.pageIndices))
	running := 0.0
	for _, idx := range c.pageIndices {
		if idx >= len(boxes) {
			return engine.Wrap("page_mediaboxes", fmt.Errorf("page index %d beyond %d media boxes", idx, len(boxes)))
		}
		doctops = append(doctops, running)
		running += boxes[idx].Height
	}
	c.doctops = doctops
	return nil
}

// At returns the page at position i in the filtered view. Negative
// indices count from the end. The first access resolves the page from
// the engine and memoizes the wrapper; later accesses return it as-is.
func (c *Collection) At(i int) (*Page, error) {
	if i < 0 {
		i += c.Len()
	}
	if i < 0 || i >= c.Len() {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", i, c.Len())
	}
	if err := c.ensureDoctops(); err != nil {
		return nil, err
	}

	idx := c.pageIndices[i]
	if page, ok := c.memo[idx]; ok {
		return page, nil
	}

	handle, err := c.eng.GetPage(idx)
	if err != nil {
		return nil, engine.Wrap("get_page", err)
	}
	page := &Page{
		Number: idx + 1,
		DocTop: c.doctops[i],
		handle: handle,
	}
	c.memo[idx] = page
	return page, nil
}

// Slice returns the pages in [start, stop), with Python-style semantics:
// negative bounds count from the end, and out-of-range bounds clamp
// rather than erroring.
func (c *Collection) Slice(start, stop int) ([]*Page, error) {
	n := c.Len()
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	start = min(max(start, 0), n)
	stop = min(max(stop, 0), n)

	var out []*Page
	for i := start; i < stop; i++ {
		page, err := c.At(i)
		if err != nil {
			return nil, err
		}
		out = append(out, page)
	}
	return out, nil
}

// All materializes every page in forward order.
func (c *Collection) All() ([]*Page, error) {
	return c.Slice(0, c.Len())
}

// Reversed materializes every page in reverse order.
func (c *Collection) Reversed() ([]*Page, error) {
	out := make([]*Page, 0, c.Len())
	for i := c.Len() - 1; i >= 0; i-- {
		page, err := c.At(i)
		if err != nil {
			return nil, err
		}
		out = append(out, page)
	}
	return out, nil
}

// Contains reports whether the page's number belongs to the filtered view.
func (c *Collection) Contains(p *Page) bool {
	if p == nil {
		return false
	}
	_, ok := c.indexSet[p.Number-1]
	return ok
}

// Scan returns a streaming iterator over the collection. See [Scanner].
func (c *Collection) Scan() *Scanner {
	return &Scanner{c: c}
}

// Close releases every memoized page wrapper and clears the memo map. It
// never materializes pages just to shut down, and calling it again is a
// no-op.
func (c *Collection) Close() error {
	var errs []error
	for _, page := range c.memo {
		if err := page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	clear(c.memo)
	return errors.Join(errs...)
}

// Scanner resolves pages one at a time without populating the memo map,
// bounding memory during streaming consumption. A memoized wrapper is
// reused when one exists; pages the scanner resolves itself are closed
// when the scanner advances past them, so each yielded page is valid only
// until the next call to Next.
type Scanner struct {
	c        *Collection
	pos      int
	page     *Page
	borrowed bool // current page came from the memo; not ours to close
	err      error
}

// Next advances to the next page. It returns false when the view is
// exhausted or resolution failed; Err distinguishes the two.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	s.release()
	if s.pos >= s.c.Len() {
		return false
	}
	if err := s.c.ensureDoctops(); err != nil {
		s.err = err
		return false
	}

	i := s.pos
	s.pos++
	idx := s.c.pageIndices[i]

	if page, ok := s.c.memo[idx]; ok {
		s.page = page
		s.borrowed = true
		return true
	}

	handle, err := s.c.eng.GetPage(idx)
	if err != nil {
		s.err = engine.Wrap("get_page", err)
		return false
	}
	s.page = &Page{
		Number: idx + 1,
		DocTop: s.c.doctops[i],
		handle: handle,
	}
	s.borrowed = false
	return true
}

// Page returns the page produced by the last successful call to Next.
func (s *Scanner) Page() *Page { return s.page }

// Err returns the first error encountered while scanning.
func (s *Scanner) Err() error { return s.err }

// Close releases the page currently held by the scanner, if the scanner
// owns it. Call it when abandoning iteration early; a completed scan has
// already released everything.
func (s *Scanner) Close() error {
	s.release()
	return nil
}

func (s *Scanner) release() {
	if s.page != nil && !s.borrowed {
		s.page.Close()
	}
	s.page = nil
	s.borrowed = false
}
