// Package plumbago retrofits cached, lazily computed derived results
// (page geometry, table extraction, lazily materialized pages) onto a
// host document library, without forcing eager computation of the whole
// document.
//
// Basic usage attaches to an open engine document and extracts through
// the adaptive stream caches:
//
//	doc := plumbago.Attach(eng)
//	defer doc.Close()
//
//	tables, err := doc.ExtractTables(view, settings)
//	best, err := doc.ExtractTable(view, settings)
//
// Logically identical settings reach the same cache no matter how their
// maps are ordered; each distinct configuration gets its own bounded
// stream cache, so memory stays capped while repeated lookups on nearby
// pages stay cheap.
//
// # Patching a host
//
// Install substitutes these implementations into a host's extension
// points exactly once, as soon as the host module is available:
//
//	host := intercept.NewHost()
//	reg := plumbago.Install(host, nil, "reader", "reader.pdf")
//
// A host that cannot be patched keeps its original behavior; the
// fallback contract is degraded performance, never degraded correctness.
// Setting the PLUMBAGO_DISABLE environment variable opts out of patch
// installation for the whole process.
package plumbago
