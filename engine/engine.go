package engine

import (
	"errors"
	"fmt"
	"image"

	"github.com/tsawler/plumbago/model"
)

// ErrNoPages is returned when a document reports a page count of zero or less.
var ErrNoPages = errors.New("document contains no pages")

// Error wraps a failure that surfaced from the document engine while
// resolving geometry or pages. Engine errors always propagate to the
// caller; returning partial results would corrupt extraction correctness.
type Error struct {
	Op  string // operation that failed, e.g. "page_mediaboxes"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap converts an arbitrary failure from the engine boundary into an
// *Error. Errors that already are engine errors pass through unchanged so
// the original cause is never buried under double wrapping.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// Engine is the document engine surface plumbago depends on.
type Engine interface {
	// PageCount returns the number of pages in the document.
	PageCount() (int, error)

	// PageMediaboxes returns the media box of every page, in page order.
	PageMediaboxes() ([]model.BBox, error)

	// GetPage resolves the page at the given 0-based index.
	GetPage(index int) (PageHandle, error)
}

// PageHandle is a resolved page. Handles hold engine resources and must be
// closed when no longer needed.
type PageHandle interface {
	// BBox returns the page's effective bounding box (the view the caller
	// sees, which may reflect cropping).
	BBox() model.BBox

	// MediaBox returns the page's canonical media box.
	MediaBox() model.BBox

	// Close releases resources held by the handle. It must be safe to call
	// more than once.
	Close() error
}

// ImageRenderer is implemented by page handles that can rasterize
// themselves, enabling the OCR text-recovery capability.
type ImageRenderer interface {
	RenderImage() (image.Image, error)
}

// Producer yields per-page table results in non-decreasing page-index
// order. Next returns io.EOF after the final item. A producer is consumed
// at most once; callers needing another pass construct a fresh one.
type Producer interface {
	Next() (pageIndex int, tables model.TableSet, err error)
}

// ProducerFactory constructs a fresh, independent Producer run. Every
// invocation must start from the beginning of the sequence.
type ProducerFactory func() (Producer, error)

// TableExtractor is implemented by engines that support table extraction.
// Geometries carry one entry per document page; settings and layout
// parameters are passed as loosely-typed maps so the engine boundary stays
// independent of caller option types. A nil pageSubset means all pages.
type TableExtractor interface {
	MakeProducer(geometries []model.PageGeometry, settings map[string]any, layout map[string]any, pageSubset []int) (Producer, error)
}
