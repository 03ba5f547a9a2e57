// Package config holds the value conversions shared by the config stores.
// Decoded TOML yields int64, float64 and []any; values set in process keep
// their Go types. Each helper accepts both.
package config

// String returns v as a string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Bool returns v as a bool.
func Bool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// Int accepts integers only.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// Int64 accepts any number; a float is truncated.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Float accepts any number.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// StringSlice drops non-string elements of a decoded array.
func StringSlice(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}
