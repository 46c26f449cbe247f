package nutrition

import (
	"fmt"
	"strings"
)

// Basis says what quantity an Entry's Protein and Calories values describe.
type Basis string

const (
	// BasisPer100g values are per 100 grams of the food.
	BasisPer100g Basis = "per_100g"
	// BasisPerUnit values are per one DefaultUnit of the food.
	BasisPerUnit Basis = "per_unit"
)

// Entry is one known food in a reference table.
type Entry struct {
	Protein      float64 `json:"protein"`
	Calories     float64 `json:"calories"`
	DefaultUnit  string  `json:"default_unit"`
	GramsPerUnit float64 `json:"grams_per_unit,omitempty"` // 0 when unknown
	Basis        Basis   `json:"basis"`
}

// Item pairs a food name with its entry when building a Table.
type Item struct {
	Name string
	Entry
}

// Table is an ordered, read-only food reference table. Keys are lowercase and
// trimmed; iteration follows declaration order.
type Table struct {
	keys    []string
	entries map[string]Entry
}

// NormalizeName lowercases and trims a free-text food name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewTable builds a table from items in order. A later duplicate key replaces
// the earlier value but keeps the earlier position.
func NewTable(items ...Item) (*Table, error) {
	t := &Table{entries: make(map[string]Entry, len(items))}
	for _, it := range items {
		if err := t.add(it); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustTable is NewTable for static data; it panics on invalid items.
func MustTable(items ...Item) *Table {
	t, err := NewTable(items...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(it Item) error {
	key := NormalizeName(it.Name)
	if key == "" {
		return fmt.Errorf("nutrition: empty food name")
	}
	if it.Protein < 0 || it.Calories < 0 || it.GramsPerUnit < 0 {
		return fmt.Errorf("nutrition: negative value for %q", key)
	}
	if it.Basis == "" {
		it.Basis = BasisPer100g
	}
	if _, exists := t.entries[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = it.Entry
	return nil
}

// Prepend returns a new table whose items come before t's. Items that share a
// key with t replace t's value.
func (t *Table) Prepend(items ...Item) (*Table, error) {
	out, err := NewTable(items...)
	if err != nil {
		return nil, err
	}
	for _, k := range t.keys {
		if _, shadowed := out.entries[k]; shadowed {
			continue
		}
		out.keys = append(out.keys, k)
		out.entries[k] = t.entries[k]
	}
	return out, nil
}

// Get returns the entry stored under an exact (already normalized) key.
func (t *Table) Get(key string) (Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Keys returns the table keys in declaration order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len reports the number of foods in the table.
func (t *Table) Len() int {
	return len(t.keys)
}
