package settings

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrNotMapping    = errors.New("entry is not a mapping")
)

// Missing is returned by Lookup in place of a value for absent keys.
type Missing struct {
	Key string
}

func (m Missing) String() string {
	return "key not found: " + m.Key
}

// Lookup walks m along the dotted key. A missing segment, a nil value or a
// non-mapping intermediate yields Missing.
func Lookup(m map[string]any, key string) any {
	value, ok := walk(m, key)
	if !ok || value == nil {
		return Missing{Key: key}
	}
	return value
}

// IsMissing reports whether v is the marker returned by Lookup.
func IsMissing(v any) bool {
	_, ok := v.(Missing)
	return ok
}

// KeysAt returns the sorted child keys of the mapping found at key.
func KeysAt(m map[string]any, key string) ([]string, error) {
	value, ok := walk(m, key)
	if !ok || value == nil {
		return nil, ErrEntryNotFound
	}
	child, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}

	keys := make([]string, 0, len(child))
	for k := range child {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func walk(m map[string]any, key string) (any, bool) {
	if !strings.Contains(key, ".") {
		value, ok := m[key]
		return value, ok
	}

	var current any = m
	for _, part := range strings.Split(key, ".") {
		level, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = level[part]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}
