package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SettingsSource supplies persisted overrides keyed by dotted path.
type SettingsSource interface {
	All() (map[string]string, error)
}

// WithOverrides returns a copy of c with each override applied. Keys are
// dotted JSON paths such as "cursor.sensitivity"; values are JSON literals,
// and values that are not valid JSON are taken as strings. The result is
// validated.
func (c Config) WithOverrides(overrides map[string]string) (Config, error) {
	if len(overrides) == 0 {
		return c, nil
	}

	tree, err := toTree(c)
	if err != nil {
		return c, err
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := setPath(tree, key, parseValue(overrides[key])); err != nil {
			return c, err
		}
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return c, err
	}
	out := c
	if err := json.Unmarshal(data, &out); err != nil {
		return c, fmt.Errorf("%w: override: %w", ErrInvalid, err)
	}
	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}

// LoadOverrides applies every setting from src to c.
func (c Config) LoadOverrides(src SettingsSource) (Config, error) {
	overrides, err := src.All()
	if err != nil {
		return c, fmt.Errorf("load settings overrides: %w", err)
	}
	return c.WithOverrides(overrides)
}

// Lookup returns the JSON encoding of the value at a dotted path.
func (c Config) Lookup(key string) (json.RawMessage, error) {
	tree, err := toTree(c)
	if err != nil {
		return nil, err
	}

	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
		}
		if cur, ok = m[part]; !ok {
			return nil, fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
		}
	}
	return json.Marshal(cur)
}

func toTree(c Config) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// setPath assigns v at key. Only existing settings may be set, so typos fail
// instead of being silently ignored.
func setPath(tree map[string]any, key string, v any) error {
	parts := strings.Split(key, ".")
	cur := tree
	for i, part := range parts {
		next, ok := cur[part]
		if !ok {
			return fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
		}
		if i == len(parts)-1 {
			if _, isSection := next.(map[string]any); isSection {
				return fmt.Errorf("%w: %q is a section, not a setting", ErrInvalid, key)
			}
			cur[part] = v
			return nil
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
		}
		cur = m
	}
	return nil
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
