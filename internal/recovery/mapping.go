// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recovery

import (
	"encoding/json"
	"fmt"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// mapRecords converts a parsed value into papers. An array contributes one
// record per usable element, a lone object contributes one record, and a
// string is evaluated as a Python literal first. Elements that are neither
// objects nor strings holding a dict literal are skipped and counted.
func mapRecords(v any) ([]types.Paper, int) {
	if s, ok := v.(string); ok {
		lit, err := EvalLiteral(s)
		if err != nil {
			return []types.Paper{}, 1
		}
		v = lit
	}

	var elems []any
	switch t := v.(type) {
	case []any:
		elems = t
	case map[string]any:
		elems = []any{t}
	default:
		return []types.Paper{}, 1
	}

	records := make([]types.Paper, 0, len(elems))
	skipped := 0
	for _, el := range elems {
		if s, ok := el.(string); ok {
			lit, err := EvalLiteral(s)
			if err != nil {
				skipped++
				continue
			}
			el = lit
		}
		m, ok := el.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		records = append(records, toPaper(m))
	}
	return records, skipped
}

// toPaper reads the four record fields from m, substituting placeholders for
// absent or null values.
func toPaper(m map[string]any) types.Paper {
	return types.Paper{
		Title:   textField(m, "title", types.MissingTitle),
		Authors: authorsField(m),
		Summary: textField(m, "summary", types.MissingSummary),
		URL:     textField(m, "url", types.MissingURL),
	}
}

func textField(m map[string]any, key, fallback string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	return text(v)
}

// authorsField accepts a list of names, a list of {"name": ...} objects, or
// a single name.
func authorsField(m map[string]any) []string {
	switch v := m["authors"].(type) {
	case nil:
		return []string{}
	case string:
		return []string{v}
	case []any:
		authors := make([]string, 0, len(v))
		for _, a := range v {
			if obj, ok := a.(map[string]any); ok {
				if name, ok := obj["name"]; ok && name != nil {
					authors = append(authors, text(name))
					continue
				}
			}
			if a != nil {
				authors = append(authors, text(a))
			}
		}
		return authors
	default:
		return []string{text(v)}
	}
}

// text renders a decoded value for display: strings as-is, scalars with
// fmt, and composites as compact JSON.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64, int, int64, uint64, bool:
		return fmt.Sprint(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
