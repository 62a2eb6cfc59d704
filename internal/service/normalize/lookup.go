package normalize

import (
	"fmt"
	"strconv"
)

// lookup walks a nested map along path, returning nil when any hop is
// missing or not a map.
func lookup(m map[string]any, path ...string) any {
	var cur any = m
	for _, key := range path {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = node[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// firstString returns the first key whose value converts to a non-empty
// string. Numbers are accepted: upstream occasionally sends numeric order
// numbers.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(lookup(m, key)); s != "" {
			return s
		}
	}
	return ""
}

// stringAt resolves one nested path to a string.
func stringAt(m map[string]any, path ...string) string {
	return asString(lookup(m, path...))
}

// sliceAt resolves one nested path to a slice, nil when absent.
func sliceAt(m map[string]any, path ...string) []any {
	s, _ := lookup(m, path...).([]any)
	return s
}

// firstMap returns the first candidate path resolving to a map.
func firstMap(m map[string]any, paths [][]string) map[string]any {
	for _, path := range paths {
		if sub, ok := lookup(m, path...).(map[string]any); ok {
			return sub
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return fmt.Sprintf("%v", t)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}
