package plumbago

import (
	"log/slog"
	"os"

	"github.com/tsawler/plumbago/engine"
	"github.com/tsawler/plumbago/intercept"
	"github.com/tsawler/plumbago/model"
	"github.com/tsawler/plumbago/ocr"
	"github.com/tsawler/plumbago/pages"
)

// Capability names installed on the host module.
const (
	CapExtractTables = "extract_tables"
	CapExtractTable  = "extract_table"
	CapPages         = "pages"
	CapClose         = "close"
	CapRecoverText   = "recover_text"
)

// Implementations installed into the host's capability slots. Hosts
// retrieve them from the slot and assert back to these types.
type (
	ExtractTablesFunc func(*Document, PageView, TableSettings) (model.TableSet, error)
	ExtractTableFunc  func(*Document, PageView, TableSettings) (*model.Table, error)
	PagesFunc         func(*Document) (*pages.Collection, error)
	CloseFunc         func(*Document) error
	RecoverTextFunc   func(engine.ImageRenderer) (string, error)
)

// disabled is read once at process start; there is no dynamic
// re-evaluation.
var disabled = os.Getenv("PLUMBAGO_DISABLE") != ""

// Disabled reports whether automatic patch installation was opted out of
// via the PLUMBAGO_DISABLE environment variable.
func Disabled() bool { return disabled }

// Install wires the standard overrides into the host's loader: it patches
// every named module that is already loaded and ready, and hooks future
// loads otherwise. The returned registry reports patch state. When
// PLUMBAGO_DISABLE is set the call does nothing beyond constructing the
// registry and the host keeps its original behavior.
func Install(loader intercept.Loader, log *slog.Logger, moduleNames ...string) *intercept.Registry {
	reg := intercept.NewRegistry(loader, applyPatch, log)
	if disabled {
		return reg
	}
	for _, name := range moduleNames {
		if reg.TryPatchNow(name) {
			break
		}
	}
	return reg
}

// applyPatch substitutes the standard capability overrides. The patch
// counts as fully applied only once the pages capability is installed; a
// module that does not expose that slot yet declines without error so a
// later load event can retry.
func applyPatch(m intercept.Module) (bool, error) {
	pagesCap := m.Capability(CapPages)
	if pagesCap == nil {
		return false, nil
	}

	if c := m.Capability(CapExtractTables); c != nil {
		c.Install(ExtractTablesFunc((*Document).ExtractTables))
	}
	if c := m.Capability(CapExtractTable); c != nil {
		c.Install(ExtractTableFunc((*Document).ExtractTable))
	}
	if c := m.Capability(CapClose); c != nil {
		c.Install(CloseFunc((*Document).Close))
	}
	if ocr.Enabled {
		if c := m.Capability(CapRecoverText); c != nil {
			c.Install(RecoverTextFunc(recoverText))
		}
	}

	pagesCap.Install(PagesFunc((*Document).Pages))
	return pagesCap.Installed(), nil
}

// recoverText backs the OCR text-recovery capability. Each call runs a
// short-lived OCR client; hosts needing throughput should hold their own
// ocr.Client.
func recoverText(page engine.ImageRenderer) (string, error) {
	client, err := ocr.New()
	if err != nil {
		return "", err
	}
	defer client.Close()
	return client.RecoverText(page)
}
