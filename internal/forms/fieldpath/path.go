// Package fieldpath addresses leaves of a nested form value tree through
// dotted paths such as "price.totalNumeric".
package fieldpath

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Get returns the value at the dotted path, and whether it was present.
func Get(tree map[string]interface{}, path string) (interface{}, bool) {
	if tree == nil || path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")
	current := tree
	for i, seg := range segments {
		val, ok := current[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return val, true
		}
		next, ok := val.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// Set writes the value at the dotted path, creating intermediate objects as
// needed. An intermediate segment that already holds a scalar is replaced,
// since the schema fixes leaf positions and a scalar there is stale data.
func Set(tree map[string]interface{}, path string, value interface{}) {
	if tree == nil || path == "" {
		return
	}

	segments := strings.Split(path, ".")
	current := tree
	for i, seg := range segments {
		if i == len(segments)-1 {
			current[seg] = value
			return
		}
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[seg] = next
		}
		current = next
	}
}

// Delete removes the leaf at the dotted path. Empty intermediate objects are
// left in place.
func Delete(tree map[string]interface{}, path string) {
	if tree == nil || path == "" {
		return
	}

	segments := strings.Split(path, ".")
	current := tree
	for i, seg := range segments {
		if i == len(segments)-1 {
			delete(current, seg)
			return
		}
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			return
		}
		current = next
	}
}

// Flatten returns every leaf of the tree keyed by its dotted path.
func Flatten(tree map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	flattenInto(out, "", tree)
	return out
}

func flattenInto(out map[string]interface{}, prefix string, tree map[string]interface{}) {
	for key, val := range tree {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := val.(map[string]interface{}); ok {
			flattenInto(out, path, nested)
			continue
		}
		out[path] = val
	}
}

// Copy returns a deep copy of the tree. Slices are copied; scalar leaves are
// shared, which is safe because leaves are replaced, never mutated.
func Copy(tree map[string]interface{}) map[string]interface{} {
	if tree == nil {
		return nil
	}
	out := make(map[string]interface{}, len(tree))
	for key, val := range tree {
		switch typed := val.(type) {
		case map[string]interface{}:
			out[key] = Copy(typed)
		case []interface{}:
			copied := make([]interface{}, len(typed))
			copy(copied, typed)
			out[key] = copied
		case []string:
			copied := make([]string, len(typed))
			copy(copied, typed)
			out[key] = copied
		default:
			out[key] = val
		}
	}
	return out
}

// Number coerces a candidate value to float64. Non-numeric input coerces to
// 0, never NaN, so downstream arithmetic stays defined.
func Number(value interface{}) float64 {
	var n float64
	switch typed := value.(type) {
	case float64:
		n = typed
	case float32:
		n = float64(typed)
	case int:
		n = float64(typed)
	case int32:
		n = float64(typed)
	case int64:
		n = float64(typed)
	case json.Number:
		n, _ = typed.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		n = parsed
	case bool:
		if typed {
			return 1
		}
		return 0
	default:
		return 0
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// String coerces a candidate value to its string form; non-strings become "".
func String(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// Bool coerces a candidate value to bool; anything but true is false.
func Bool(value interface{}) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return false
}

// StringSlice coerces a candidate value to []string, accepting the
// []interface{} shape produced by JSON decoding.
func StringSlice(value interface{}) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []interface{}:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
