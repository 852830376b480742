// Package model defines the shared data types for the plumbago caching
// layer: bounding boxes, per-page geometry records, and extracted tables.
//
// # Geometry
//
//   - [BBox] - bounding box in PDF user space
//   - [PageGeometry] - a page's boxes plus its cumulative vertical offset
//
// # Tables
//
// The [Table] type represents one extracted table as rows of [Cell] values,
// with export methods ToMarkdown(), ToCSV(), and ToHTML(). A [TableSet] is
// everything extracted from a single page; [TableSet.Largest] selects the
// table with the most cells.
//
// All types are plain values with no behavior tied to any particular
// document engine; the engine and caching packages build on them.
package model
