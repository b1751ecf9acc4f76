package util

import (
	"fmt"
	"strings"

	"github.com/oliveagle/jsonpath"
)

const ROOT_PATH = "$"

// Lookup resolves a JSONPath expression against data. A missing key is
// reported as an error, callers decide whether that is fatal.
func Lookup(data map[string]any, path string) (any, error) {
	if len(path) == 0 || path == ROOT_PATH {
		return data, nil
	}
	return jsonpath.JsonPathLookup(data, path)
}

func ValidatePath(path string) error {
	if len(path) == 0 || path == ROOT_PATH {
		return nil
	}
	if _, err := jsonpath.Compile(path); err != nil {
		return fmt.Errorf("invalid path %s: %w", path, err)
	}
	_, err := splitPath(path)
	return err
}

// SetPath returns a copy of data with value written at a dotted path such as
// $.Payload.sf_status. Intermediate objects are created as needed. Setting the
// root path replaces data entirely, value must then be an object.
func SetPath(data map[string]any, path string, value any) (map[string]any, error) {
	keys, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("value written at %s must be an object, got %T", ROOT_PATH, value)
		}
		return DeepCopy(m), nil
	}
	out := DeepCopy(data)
	if out == nil {
		out = make(map[string]any)
	}
	cur := out
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[k] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = DeepCopyValue(value)
	return out, nil
}

func splitPath(path string) ([]string, error) {
	if len(path) == 0 || path == ROOT_PATH {
		return nil, nil
	}
	if !strings.HasPrefix(path, ROOT_PATH+".") {
		return nil, fmt.Errorf("path %s should start with %s.", path, ROOT_PATH)
	}
	keys := strings.Split(strings.TrimPrefix(path, ROOT_PATH+"."), ".")
	for _, k := range keys {
		if len(k) == 0 || strings.ContainsAny(k, "[]*@()") {
			return nil, fmt.Errorf("path %s can only contain plain keys", path)
		}
	}
	return keys, nil
}

func DeepCopy(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = DeepCopyValue(v)
	}
	return out
}

func DeepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return DeepCopy(val)
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = DeepCopyValue(val[i])
		}
		return out
	default:
		return v
	}
}

// DeepMerge overlays src on a copy of dst. Nested objects are merged key by
// key, every other value in src replaces the one in dst.
func DeepMerge(dst map[string]any, src map[string]any) map[string]any {
	out := DeepCopy(dst)
	if out == nil {
		out = make(map[string]any, len(src))
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := out[k].(map[string]any)
		if srcIsMap && dstIsMap {
			out[k] = DeepMerge(dstMap, srcMap)
			continue
		}
		out[k] = DeepCopyValue(v)
	}
	return out
}

func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
