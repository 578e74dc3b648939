package storage

import (
	"encoding/json"
	"strings"
)

const (
	// MaxArrayLen caps arrays in a reduced value.
	MaxArrayLen = 100
	// MaxInlineBinary is the length above which base64-looking strings are dropped.
	MaxInlineBinary = 10 * 1024
)

// reduce shrinks a JSON value: embedded binaries (data: URIs, long base64) are
// dropped and arrays are capped. It reports false when nothing changed.
func reduce(raw []byte) ([]byte, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw, false
	}
	out, changed := reduceValue(v)
	if !changed {
		return raw, false
	}
	small, err := json.Marshal(out)
	if err != nil {
		return raw, false
	}
	return small, true
}

func reduceValue(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		changed := false
		for k, child := range t {
			if isBinary(child) {
				delete(t, k)
				changed = true
				continue
			}
			nv, c := reduceValue(child)
			t[k] = nv
			changed = changed || c
		}
		return t, changed
	case []any:
		changed := false
		kept := make([]any, 0, min(len(t), MaxArrayLen))
		for _, child := range t {
			if isBinary(child) {
				changed = true
				continue
			}
			if len(kept) == MaxArrayLen {
				changed = true
				break
			}
			nv, c := reduceValue(child)
			kept = append(kept, nv)
			changed = changed || c
		}
		return kept, changed
	}
	return v, false
}

func isBinary(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	if strings.HasPrefix(s, "data:") {
		return true
	}
	return len(s) > MaxInlineBinary && looksBase64(s)
}

func looksBase64(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '+', r == '/', r == '=', r == '-', r == '_', r == '\n', r == '\r':
		default:
			return false
		}
	}
	return true
}
