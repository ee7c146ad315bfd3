package display

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Inspect renders v the way the console facade's deterministic
// pretty-printer does (spec.md §4.9): depth-limited, colors disabled,
// with circular references detected and preserved as "[Circular *1]"
// rather than recursing forever. It does not attempt Node's exact
// breakLength:80 column wrapping — everything renders on one line.
func Inspect(v interface{}, depth int, colors bool) string {
	_ = colors // always false; kept as a parameter to mirror the facade's signature
	return inspectValue(v, depth, map[uintptr]bool{})
}

func inspectValue(v interface{}, depth int, seen map[uintptr]bool) string {
	switch t := v.(type) {
	case nil:
		return "undefined"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return strconv.Quote(t)
	case float64:
		return formatNumber(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case []interface{}:
		return inspectArray(t, depth, seen)
	case map[string]interface{}:
		return inspectObject(t, depth, seen)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func inspectArray(arr []interface{}, depth int, seen map[uintptr]bool) string {
	if len(arr) == 0 {
		return "[]"
	}
	ptr := reflect.ValueOf(arr).Pointer()
	if seen[ptr] {
		return "[Circular *1]"
	}
	if depth < 0 {
		return "[Array]"
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	parts := make([]string, len(arr))
	for i, e := range arr {
		parts[i] = inspectValue(e, depth-1, seen)
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

func inspectObject(obj map[string]interface{}, depth int, seen map[uintptr]bool) string {
	if len(obj) == 0 {
		return "{}"
	}
	ptr := reflect.ValueOf(obj).Pointer()
	if seen[ptr] {
		return "[Circular *1]"
	}
	if depth < 0 {
		return "[Object]"
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, inspectValue(obj[k], depth-1, seen))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
