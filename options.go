package plumbago

// TableSettings holds table-extraction configuration as the host library
// supplies it: a free-form mapping whose logical content, not its
// ordering, determines which stream cache serves a request.
type TableSettings map[string]any

// Clone creates a deep copy of the settings, descending into nested
// mappings and sequences.
func (s TableSettings) Clone() TableSettings {
	if s == nil {
		return nil
	}
	return TableSettings(cloneMap(s))
}

// LayoutParams holds layout-analysis parameters, keyed the same way as
// TableSettings.
type LayoutParams map[string]any

// Clone creates a deep copy of the parameters.
func (p LayoutParams) Clone() LayoutParams {
	if p == nil {
		return nil
	}
	return LayoutParams(cloneMap(p))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Option configures a Document at attach time.
type Option func(*Document)

// WithPages restricts the document view to the given 1-based page
// numbers. Ascending document order is preserved regardless of the order
// given here.
func WithPages(pageNumbers ...int) Option {
	return func(d *Document) {
		d.pagesToParse = make([]int, len(pageNumbers))
		copy(d.pagesToParse, pageNumbers)
	}
}

// WithLayoutParams sets the layout-analysis parameters passed to the
// engine's producer and folded into every cache key.
func WithLayoutParams(params LayoutParams) Option {
	return func(d *Document) {
		d.layout = params.Clone()
	}
}

// WithCacheWindow sets the eviction-window size for per-key stream
// caches. The default retains two page entries per stream.
func WithCacheWindow(window int) Option {
	return func(d *Document) {
		d.window = window
	}
}

// OwnEngine makes the document close the underlying engine on Close,
// when the engine exposes a Close method. By default the engine is
// treated as externally owned.
func OwnEngine() Option {
	return func(d *Document) {
		d.ownsEngine = true
	}
}
