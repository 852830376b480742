package plumbago

import (
	"fmt"
	"io"
	"sort"
	"testing"

	"github.com/tsawler/plumbago/engine"
	"github.com/tsawler/plumbago/model"
)

// fakeEngine is a synthetic document: n pages of uniform height, one
// distinguishable table per page unless overridden via tables.
type fakeEngine struct {
	n            int
	height       float64
	tables       map[int]model.TableSet
	producerRuns int
	lastSubset   []int
	closes       int
}

func newFakeEngine(n int) *fakeEngine {
	return &fakeEngine{n: n, height: 792, tables: make(map[int]model.TableSet)}
}

func (e *fakeEngine) PageCount() (int, error) { return e.n, nil }

func (e *fakeEngine) PageMediaboxes() ([]model.BBox, error) {
	boxes := make([]model.BBox, e.n)
	for i := range boxes {
		boxes[i] = model.NewBBox(0, 0, 612, e.height)
	}
	return boxes, nil
}

func (e *fakeEngine) GetPage(index int) (engine.PageHandle, error) {
	return &fakeHandle{box: model.NewBBox(0, 0, 612, e.height)}, nil
}

func (e *fakeEngine) Close() error {
	e.closes++
	return nil
}

func (e *fakeEngine) tablesFor(idx int) model.TableSet {
	if ts, ok := e.tables[idx]; ok {
		return ts
	}
	return model.TableSet{
		&model.Table{Rows: [][]model.Cell{{{Text: fmt.Sprintf("p%d", idx)}}}},
	}
}

func (e *fakeEngine) MakeProducer(geoms []model.PageGeometry, settings map[string]any, layout map[string]any, pageSubset []int) (engine.Producer, error) {
	e.producerRuns++
	e.lastSubset = pageSubset

	var indices []int
	if pageSubset == nil {
		for i := 0; i < e.n; i++ {
			indices = append(indices, i)
		}
	} else {
		indices = append(indices, pageSubset...)
		sort.Ints(indices)
	}
	return &fakeRun{eng: e, indices: indices}, nil
}

type fakeRun struct {
	eng     *fakeEngine
	indices []int
	pos     int
}

func (r *fakeRun) Next() (int, model.TableSet, error) {
	if r.pos >= len(r.indices) {
		return 0, nil, io.EOF
	}
	idx := r.indices[r.pos]
	r.pos++
	return idx, r.eng.tablesFor(idx), nil
}

type fakeHandle struct {
	box model.BBox
}

func (h *fakeHandle) BBox() model.BBox     { return h.box }
func (h *fakeHandle) MediaBox() model.BBox { return h.box }
func (h *fakeHandle) Close() error         { return nil }

// canonicalView builds the unmodified view of a page.
func canonicalView(e *fakeEngine, idx int) PageView {
	box := model.NewBBox(0, 0, 612, e.height)
	return PageView{
		PageIndex: idx,
		BBox:      box,
		MediaBox:  box,
		DocTop:    float64(idx) * e.height,
		Original:  true,
	}
}

func cellText(ts model.TableSet) string {
	if len(ts) == 0 {
		return ""
	}
	return ts[0].Rows[0][0].Text
}

func TestExtractTablesBackwardJump(t *testing.T) {
	eng := newFakeEngine(5)
	doc := Attach(eng)
	defer doc.Close()

	settings := TableSettings{"vertical_strategy": "lines"}

	tables, err := doc.ExtractTables(canonicalView(eng, 4), settings)
	if err != nil {
		t.Fatalf("ExtractTables(4) failed: %v", err)
	}
	if cellText(tables) != "p4" {
		t.Errorf("page 4: got %q", cellText(tables))
	}

	// Page 0 fell out of the window; this resolves via replay.
	tables, err = doc.ExtractTables(canonicalView(eng, 0), settings)
	if err != nil {
		t.Fatalf("ExtractTables(0) failed: %v", err)
	}
	if cellText(tables) != "p0" {
		t.Errorf("page 0: got %q", cellText(tables))
	}

	if len(doc.streams) != 1 {
		t.Errorf("expected one stream cache, got %d", len(doc.streams))
	}
	for _, cache := range doc.streams {
		if cache.Retained() > 2 {
			t.Errorf("cache retained %d entries, window is 2", cache.Retained())
		}
	}
	if eng.producerRuns != 2 {
		t.Errorf("expected 2 producer runs (drain + replay), got %d", eng.producerRuns)
	}
}

func TestEquivalentSettingsShareCache(t *testing.T) {
	eng := newFakeEngine(3)
	doc := Attach(eng)
	defer doc.Close()

	a := TableSettings{"snap_tolerance": 3, "vertical_strategy": "lines"}
	b := TableSettings{"vertical_strategy": "lines", "snap_tolerance": 3.0}

	if _, err := doc.ExtractTables(canonicalView(eng, 0), a); err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}
	if _, err := doc.ExtractTables(canonicalView(eng, 1), b); err != nil {
		t.Fatalf("second extraction failed: %v", err)
	}
	if len(doc.streams) != 1 {
		t.Fatalf("equivalent settings should share one cache, got %d", len(doc.streams))
	}

	c := TableSettings{"vertical_strategy": "text"}
	if _, err := doc.ExtractTables(canonicalView(eng, 0), c); err != nil {
		t.Fatalf("third extraction failed: %v", err)
	}
	if len(doc.streams) != 2 {
		t.Errorf("different settings should get their own cache, got %d", len(doc.streams))
	}
}

func TestCroppedViewExtractsDirectly(t *testing.T) {
	eng := newFakeEngine(4)
	doc := Attach(eng)
	defer doc.Close()

	view := canonicalView(eng, 2)
	view.BBox = model.NewBBox(50, 50, 300, 400)
	view.Original = false

	tables, err := doc.ExtractTables(view, nil)
	if err != nil {
		t.Fatalf("ExtractTables failed: %v", err)
	}
	if cellText(tables) != "p2" {
		t.Errorf("got %q", cellText(tables))
	}
	if len(doc.streams) != 0 {
		t.Errorf("direct extraction must not create stream caches, got %d", len(doc.streams))
	}
	if len(eng.lastSubset) != 1 || eng.lastSubset[0] != 2 {
		t.Errorf("direct extraction should restrict the run to page 2, got %v", eng.lastSubset)
	}
}

func TestSinglePageDocumentBypassesCache(t *testing.T) {
	eng := newFakeEngine(1)
	doc := Attach(eng)
	defer doc.Close()

	tables, err := doc.ExtractTables(canonicalView(eng, 0), nil)
	if err != nil {
		t.Fatalf("ExtractTables failed: %v", err)
	}
	if cellText(tables) != "p0" {
		t.Errorf("got %q", cellText(tables))
	}
	if len(doc.streams) != 0 {
		t.Errorf("single-page document must not create stream caches, got %d", len(doc.streams))
	}
}

func TestExtractTableSelectsLargest(t *testing.T) {
	eng := newFakeEngine(3)
	small := &model.Table{Rows: [][]model.Cell{{{Text: "small"}}}}
	big := &model.Table{Rows: [][]model.Cell{
		{{Text: "a"}, {Text: "b"}},
		{{Text: "c"}, {Text: "d"}},
	}}
	eng.tables[1] = model.TableSet{small, big}
	eng.tables[2] = model.TableSet{}

	doc := Attach(eng)
	defer doc.Close()

	got, err := doc.ExtractTable(canonicalView(eng, 1), nil)
	if err != nil {
		t.Fatalf("ExtractTable failed: %v", err)
	}
	if got != big {
		t.Error("expected the table with the most cells")
	}

	got, err = doc.ExtractTable(canonicalView(eng, 2), nil)
	if err != nil {
		t.Fatalf("ExtractTable on empty page failed: %v", err)
	}
	if got != nil {
		t.Error("expected nil for a page without tables")
	}
}

func TestPagesMemoizedOnDocument(t *testing.T) {
	eng := newFakeEngine(3)
	doc := Attach(eng)

	a, err := doc.Pages()
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	b, err := doc.Pages()
	if err != nil {
		t.Fatalf("Pages again failed: %v", err)
	}
	if a != b {
		t.Error("expected the same collection on repeat access")
	}

	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := doc.Pages(); err == nil {
		t.Error("Pages after Close should fail")
	}
}

func TestCloseOwnership(t *testing.T) {
	owned := newFakeEngine(2)
	doc := Attach(owned, OwnEngine())
	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if owned.closes != 1 {
		t.Errorf("owned engine closed %d times, expected 1", owned.closes)
	}

	external := newFakeEngine(2)
	doc = Attach(external)
	if err := doc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if external.closes != 0 {
		t.Errorf("external engine must not be closed, closed %d times", external.closes)
	}
}

func TestWithPagesRestrictsView(t *testing.T) {
	eng := newFakeEngine(5)
	doc := Attach(eng, WithPages(2, 4))
	defer doc.Close()

	coll, err := doc.Pages()
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if coll.Len() != 2 {
		t.Errorf("expected 2 pages in the view, got %d", coll.Len())
	}

	// The page subset reaches the producer as 0-based indices.
	if _, err := doc.ExtractTables(canonicalView(eng, 1), nil); err != nil {
		t.Fatalf("ExtractTables failed: %v", err)
	}
	if len(eng.lastSubset) != 2 || eng.lastSubset[0] != 1 || eng.lastSubset[1] != 3 {
		t.Errorf("expected subset [1 3], got %v", eng.lastSubset)
	}
}
