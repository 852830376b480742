// Package engine defines the narrow interfaces plumbago consumes from a
// document engine: page counting, page geometry, page resolution, and the
// table-extraction producer. The engine itself (PDF parsing, decoding,
// layout analysis) is an opaque collaborator; plumbago never reaches past
// these interfaces.
package engine
