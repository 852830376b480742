// Package cachekey canonicalizes extraction configuration into
// order-independent, comparable cache keys.
//
// Two logically identical configurations — the same settings, geometry,
// layout parameters, and page subset, in any map or slice ordering — must
// normalize to equal keys, because the key decides which streaming cache a
// table lookup lands in. Normalization is a pure function: no hidden state,
// no failures.
package cachekey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/plumbago/model"
)

// Key identifies one extraction configuration. Keys are comparable and
// usable as map keys; each field is a canonical encoding of one parameter
// group.
type Key struct {
	Settings string
	Geometry string
	Layout   string
	Pages    string
}

// New builds the cache key for an extraction run. A nil settings or layout
// map and a nil page subset are canonical "absent" values and always
// produce the same key component.
func New(settings map[string]any, geometries []model.PageGeometry, layout map[string]any, pageNumbers []int) Key {
	return Key{
		Settings: Normalize(settings),
		Geometry: geometryString(geometries),
		Layout:   Normalize(layout),
		Pages:    pagesString(pageNumbers),
	}
}

// Normalize renders a nested configuration value into its canonical string
// form. Maps become sorted key=value pairs, sequences become element lists,
// and scalars are encoded with a type tag. Numeric values of any width
// normalize to one representation, so 1 and 1.0 are the same setting.
// Normalize is total: unrecognized types fall back to their formatted
// value rather than failing.
func Normalize(value any) string {
	var sb strings.Builder
	writeValue(&sb, value)
	return sb.String()
}

func writeValue(sb *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		sb.WriteString("n")
	case string:
		sb.WriteString("s:")
		sb.WriteString(strconv.Quote(v))
	case bool:
		sb.WriteString("b:")
		sb.WriteString(strconv.FormatBool(v))
	case int:
		writeNumber(sb, float64(v))
	case int8:
		writeNumber(sb, float64(v))
	case int16:
		writeNumber(sb, float64(v))
	case int32:
		writeNumber(sb, float64(v))
	case int64:
		writeNumber(sb, float64(v))
	case uint:
		writeNumber(sb, float64(v))
	case uint8:
		writeNumber(sb, float64(v))
	case uint16:
		writeNumber(sb, float64(v))
	case uint32:
		writeNumber(sb, float64(v))
	case uint64:
		writeNumber(sb, float64(v))
	case float32:
		writeNumber(sb, float64(v))
	case float64:
		writeNumber(sb, v)
	case map[string]any:
		writeMap(sb, v)
	case []any:
		sb.WriteString("[")
		for i, elem := range v {
			if i > 0 {
				sb.WriteString(",")
			}
			writeValue(sb, elem)
		}
		sb.WriteString("]")
	case []string:
		sb.WriteString("[")
		for i, elem := range v {
			if i > 0 {
				sb.WriteString(",")
			}
			writeValue(sb, elem)
		}
		sb.WriteString("]")
	case []int:
		sb.WriteString("[")
		for i, elem := range v {
			if i > 0 {
				sb.WriteString(",")
			}
			writeNumber(sb, float64(elem))
		}
		sb.WriteString("]")
	case []float64:
		sb.WriteString("[")
		for i, elem := range v {
			if i > 0 {
				sb.WriteString(",")
			}
			writeNumber(sb, elem)
		}
		sb.WriteString("]")
	default:
		// Unknown types still normalize deterministically.
		sb.WriteString("?:")
		fmt.Fprintf(sb, "%T=%v", v, v)
	}
}

func writeMap(sb *strings.Builder, m map[string]any) {
	if m == nil {
		sb.WriteString("n")
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString("=")
		writeValue(sb, m[k])
	}
	sb.WriteString("}")
}

func writeNumber(sb *strings.Builder, f float64) {
	sb.WriteString("#")
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

// geometryString renders a geometry list canonically. Geometry lists are
// positional, so order is preserved.
func geometryString(geometries []model.PageGeometry) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, g := range geometries {
		if i > 0 {
			sb.WriteString(",")
		}
		writeBox(&sb, g.Box)
		sb.WriteString("/")
		writeBox(&sb, g.MediaBox)
		sb.WriteString("/")
		writeNumber(&sb, g.DocTop)
		sb.WriteString("/")
		sb.WriteString(strconv.FormatBool(g.IsCropped))
	}
	sb.WriteString("]")
	return sb.String()
}

func writeBox(sb *strings.Builder, b model.BBox) {
	writeNumber(sb, b.X)
	sb.WriteString(";")
	writeNumber(sb, b.Y)
	sb.WriteString(";")
	writeNumber(sb, b.Width)
	sb.WriteString(";")
	writeNumber(sb, b.Height)
}

// pagesString renders a page subset. nil (all pages) is distinct from an
// explicit empty subset.
func pagesString(pageNumbers []int) string {
	if pageNumbers == nil {
		return "n"
	}
	var sb strings.Builder
	sb.WriteString("[")
	for i, n := range pageNumbers {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.Itoa(n))
	}
	sb.WriteString("]")
	return sb.String()
}
