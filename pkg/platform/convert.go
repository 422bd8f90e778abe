package platform

import (
	"fmt"
)

// ToInt64 converts the numeric types produced by the codec to int64.
func ToInt64(v any) (int64, bool) {
	return toInt64(v)
}

// ToFloat64 converts the numeric types produced by the codec to float64.
func ToFloat64(v any) (float64, bool) {
	return toFloat64(v)
}

// ParseString extracts a string from a decoded value.
func ParseString(v any) string {
	return parseString(v)
}

// ParseMap extracts a map[string]any from a decoded value.
func ParseMap(v any) map[string]any {
	return parseMap(v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

func parseMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case map[any]any:
		converted := make(map[string]any, len(m))
		for key, val := range m {
			if keyString, ok := key.(string); ok {
				converted[keyString] = val
			}
		}
		return converted
	default:
		return nil
	}
}
