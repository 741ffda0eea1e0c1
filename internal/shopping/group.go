package shopping

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// displayLanguage drives the ordering of group names.
var displayLanguage = language.Spanish

// GroupedItem collapses raw items that share a normalized ingredient name.
// It is never stored; GroupItems rebuilds it from the raw items each time.
type GroupedItem struct {
	Name      string   `json:"name"`
	Key       string   `json:"key"`
	IDs       []string `json:"ids"`
	Purchased bool     `json:"purchased"`
	Manual    bool     `json:"manual"`
}

// NormalizeName is the grouping key for an ingredient name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DisplayName trims name and upper-cases its first character only.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// GroupItems merges items by NormalizeName. A group is purchased only when
// every member is, and manual when any member is. Unpurchased groups come
// first; each partition is sorted by display name.
func GroupItems(items []Item) []GroupedItem {
	byKey := make(map[string]int)
	groups := []GroupedItem{}

	for _, item := range items {
		key := NormalizeName(item.IngredientName)
		idx, ok := byKey[key]
		if !ok {
			byKey[key] = len(groups)
			groups = append(groups, GroupedItem{
				Name:      DisplayName(item.IngredientName),
				Key:       key,
				IDs:       []string{item.ID},
				Purchased: item.Purchased,
				Manual:    item.Manual,
			})
			continue
		}

		g := &groups[idx]
		g.IDs = append(g.IDs, item.ID)
		g.Purchased = g.Purchased && item.Purchased
		g.Manual = g.Manual || item.Manual
	}

	sortGroups(groups)
	return groups
}

func sortGroups(groups []GroupedItem) {
	col := collate.New(displayLanguage)
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Purchased != b.Purchased {
			return !a.Purchased
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.Key < b.Key
	})
}

// FindGroup returns the group whose key matches name after normalization.
func FindGroup(groups []GroupedItem, name string) (GroupedItem, bool) {
	key := NormalizeName(name)
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return GroupedItem{}, false
}
