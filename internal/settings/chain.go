package settings

import (
	"fmt"
	"strings"
)

// Chain is an ordered list of sources, highest priority first.
type Chain []Source

// Merge builds a nested map holding every declared field taken from the first
// source that defines it. Fields no source defines fall back to defaults or
// stay absent. Keys outside fields are ignored.
func (c Chain) Merge(fields []string, defaults map[string]any) (map[string]any, error) {
	loaded := make([]map[string]any, 0, len(c))
	for _, src := range c {
		values, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("load %s source: %w", src.Name(), err)
		}
		loaded = append(loaded, normalizeKeys(values))
	}

	merged := make(map[string]any)
	for _, field := range fields {
		key := normalize(field)
		value, ok := firstDefined(loaded, key)
		if !ok {
			value, ok = defaults[field]
		}
		if ok {
			setNested(merged, field, value)
		}
	}
	return merged, nil
}

func firstDefined(loaded []map[string]any, key string) (any, bool) {
	for _, values := range loaded {
		if value, ok := values[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// normalize folds the nesting separator so that "app.logger_enabled" and
// "APP_LOGGER_ENABLED" name the same field.
func normalize(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), ".", "_")
}

func normalizeKeys(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[normalize(key)] = value
	}
	return out
}

func setNested(m map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
