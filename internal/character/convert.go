package character

import "fmt"

// Tolerant converters for metadata values. Canonical payloads from the
// normalizer already use these shapes; merges of partial updates may not.

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asInt(v interface{}, fallback int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case float32:
		return int(t)
	default:
		return fallback
	}
}

func asStringSlice(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string(nil), t...)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, asString(item))
		}
		return out
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	default:
		return []string{}
	}
}

func asStringMap(v interface{}) map[string]string {
	switch t := v.(type) {
	case nil:
		return map[string]string{}
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	case map[string]interface{}:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = asString(val)
		}
		return out
	default:
		return map[string]string{}
	}
}
