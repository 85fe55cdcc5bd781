package prompts

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// CategoryUncategorized is the catch-all for words absent from the table.
const CategoryUncategorized = "uncategorized"

// defaultCategories maps category names to the keywords they cover. The
// table is data: deployments can replace it wholesale with a JSON file
// without touching code.
var defaultCategories = map[string][]string{
	"structural": {"grid", "radial", "fractal", "voronoi", "maze", "tessellated", "lattice"},
	"organic":    {"cellular", "flowing", "growth", "branching", "veins", "natural", "biological"},
	"textural":   {"rough", "smooth", "grainy", "sharp", "soft", "coarse", "fine", "gritty"},
	"map_like":   {"topographic", "contour", "terrain", "elevation", "isoline", "cartographic"},
	"geometric":  {"angular", "curved", "symmetrical", "tessellated", "polygonal", "circular"},
	"visual":     {"bold", "subtle", "delicate", "strong", "gentle", "dramatic", "minimalist"},
}

// defaultCategoryOrder fixes the resolution order for words listed under
// more than one category ("tessellated" is both structural and geometric;
// the earlier category wins).
var defaultCategoryOrder = []string{"structural", "organic", "textural", "map_like", "geometric", "visual"}

// CategoryTable resolves a keyword to its category by static lookup.
type CategoryTable struct {
	categories map[string][]string
	byKeyword  map[string]string
}

// NewCategoryTable builds a table from the given category map. Lookup keys
// are lowercased. A keyword listed under several categories resolves to the
// first category in sorted name order, so repeated builds always agree.
func NewCategoryTable(categories map[string][]string) *CategoryTable {
	order := make([]string, 0, len(categories))
	for name := range categories {
		order = append(order, name)
	}
	sort.Strings(order)
	return newCategoryTableOrdered(order, categories)
}

func newCategoryTableOrdered(order []string, categories map[string][]string) *CategoryTable {
	byKeyword := make(map[string]string)
	for _, category := range order {
		for _, w := range categories[category] {
			w = strings.ToLower(w)
			if _, ok := byKeyword[w]; !ok {
				byKeyword[w] = category
			}
		}
	}
	return &CategoryTable{categories: categories, byKeyword: byKeyword}
}

// DefaultCategoryTable returns the built-in table. Resolution follows
// defaultCategoryOrder, not sorted names.
func DefaultCategoryTable() *CategoryTable {
	return newCategoryTableOrdered(defaultCategoryOrder, defaultCategories)
}

// LoadCategoryTable reads a category table from a JSON file shaped as
// {"category": ["word", ...], ...}. An empty path returns the built-in
// table.
func LoadCategoryTable(path string) (*CategoryTable, error) {
	if path == "" {
		return DefaultCategoryTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category table %s: %w", path, err)
	}
	var categories map[string][]string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse category table %s: %w", path, err)
	}
	return NewCategoryTable(categories), nil
}

// Categorize returns the category for a keyword, or CategoryUncategorized
// when the word is not in the table.
func (t *CategoryTable) Categorize(keyword string) string {
	if category, ok := t.byKeyword[strings.ToLower(keyword)]; ok {
		return category
	}
	return CategoryUncategorized
}

// Alternatives returns the other keywords sharing a category with the given
// keyword, in table order. Uncategorized keywords have no alternatives.
func (t *CategoryTable) Alternatives(keyword string) []string {
	keyword = strings.ToLower(keyword)
	category, ok := t.byKeyword[keyword]
	if !ok {
		return nil
	}
	var alts []string
	for _, w := range t.categories[category] {
		if strings.ToLower(w) != keyword {
			alts = append(alts, strings.ToLower(w))
		}
	}
	return alts
}
