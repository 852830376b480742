package model

// BBox represents a bounding box (rectangle) in PDF user space.
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom (PDF coordinate system)
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate.
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Bottom returns the bottom edge Y coordinate.
func (b BBox) Bottom() float64 {
	return b.Y
}

// Top returns the top edge Y coordinate.
func (b BBox) Top() float64 {
	return b.Y + b.Height
}

// Area returns the area of the bounding box.
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// IsEmpty returns true if the bounding box has zero area.
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// PageGeometry describes one page's boxes and its cumulative vertical
// offset within the document. DocTop is the running sum of the heights of
// all preceding pages; it is 0 for the first page and non-decreasing in
// page order. IsCropped records that the caller's view of the page differs
// from the canonical document box.
//
// PageGeometry is a comparable value: geometry lists participate in cache
// keys, and two identical page views must compare equal.
type PageGeometry struct {
	Box       BBox
	MediaBox  BBox
	DocTop    float64
	IsCropped bool
}
