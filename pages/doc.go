// Package pages provides a lazy, random-access view over document pages.
//
// A [Collection] is built once per document from the engine's page count
// and an optional 1-based page filter. Individual pages materialize on
// first access and are memoized; cumulative vertical offsets (doctops) for
// the filtered view are computed once, lazily.
//
// # Random access
//
//	coll, _ := pages.New(eng, nil)
//	p, _ := coll.At(0)   // first page
//	p, _ = coll.At(-1)   // last page, negative indices wrap
//	some, _ := coll.Slice(1, 3)
//
// # Streaming access
//
// [Collection.Scan] returns a [Scanner] that resolves pages one at a time
// without populating the memo map, so a full traversal costs O(1)
// additional memory beyond the page currently yielded:
//
//	sc := coll.Scan()
//	defer sc.Close()
//	for sc.Next() {
//	    use(sc.Page())
//	}
//	if err := sc.Err(); err != nil { ... }
//
// The memo map is not internally synchronized. The dominant consumption
// pattern is single-threaded sequential access per document; callers that
// materialize pages from multiple goroutines must serialize externally.
package pages
