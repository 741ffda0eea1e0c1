package ingredients

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// DictionaryResolver looks dishes up in a static dictionary.
type DictionaryResolver struct {
	entries map[string][]string
}

// NewDictionaryResolver loads the built-in dictionary and, when overridePath
// is set, merges that YAML file over it.
func NewDictionaryResolver(overridePath string) (*DictionaryResolver, error) {
	d := &DictionaryResolver{entries: make(map[string][]string)}
	if err := d.load(defaultDictionary); err != nil {
		return nil, fmt.Errorf("failed to load built-in dictionary: %w", err)
	}

	if overridePath == "" {
		return d, nil
	}
	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", overridePath, err)
	}
	if err := d.load(data); err != nil {
		return nil, fmt.Errorf("failed to load dictionary %s: %w", overridePath, err)
	}
	return d, nil
}

func (d *DictionaryResolver) load(data []byte) error {
	raw := map[string][]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for dish, names := range raw {
		key := normalize(dish)
		if key == "" {
			continue
		}
		d.entries[key] = names
	}
	return nil
}

// Len returns the number of dishes known.
func (d *DictionaryResolver) Len() int {
	return len(d.entries)
}

// Resolve returns the entry whose key equals the dish name, or else the
// longest key contained in it. ErrNotFound when nothing matches.
func (d *DictionaryResolver) Resolve(_ context.Context, dishName string) ([]string, error) {
	dish := normalize(dishName)
	if dish == "" {
		return nil, ErrNotFound
	}
	if names, ok := d.entries[dish]; ok {
		return clean(names), nil
	}

	best := ""
	for key := range d.entries {
		if !containsWord(dish, key) {
			continue
		}
		// Longest key wins; ties go to the alphabetically first.
		if len(key) > len(best) || (len(key) == len(best) && key < best) {
			best = key
		}
	}
	if best == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, dishName)
	}
	return clean(d.entries[best]), nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// containsWord reports whether key appears in dish on word boundaries.
func containsWord(dish, key string) bool {
	return strings.Contains(" "+dish+" ", " "+key+" ")
}
