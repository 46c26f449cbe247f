package nutrition

import "strings"

// MatchStrategy picks among containment matches once an exact lookup fails.
type MatchStrategy int

const (
	// MatchFirstInOrder returns the first key, in declaration order, that is
	// contained in the input or contains it.
	MatchFirstInOrder MatchStrategy = iota
	// MatchLongestKey returns the longest such key; ties go to declaration order.
	MatchLongestKey
)

// ParseMatchStrategy maps "first" and "longest" to a strategy. Anything else
// is MatchFirstInOrder.
func ParseMatchStrategy(s string) MatchStrategy {
	if strings.EqualFold(strings.TrimSpace(s), "longest") {
		return MatchLongestKey
	}
	return MatchFirstInOrder
}

// Match is a resolved reference entry and the table key it was found under.
type Match struct {
	Key string
	Entry
}

// Resolver maps free-text food names onto table entries.
type Resolver struct {
	table    *Table
	strategy MatchStrategy
}

// NewResolver returns a resolver over table.
func NewResolver(table *Table, strategy MatchStrategy) *Resolver {
	return &Resolver{table: table, strategy: strategy}
}

// Resolve finds the entry for foodName. An exact key always wins; otherwise
// keys are compared by containment in both directions. ok is false for
// unknown foods, which callers must surface as "needs manual nutrition".
func (r *Resolver) Resolve(foodName string) (Match, bool) {
	name := NormalizeName(foodName)
	if name == "" {
		return Match{}, false
	}
	if e, ok := r.table.Get(name); ok {
		return Match{Key: name, Entry: e}, true
	}

	var (
		best  Match
		found bool
	)
	for _, key := range r.table.keys {
		if !strings.Contains(name, key) && !strings.Contains(key, name) {
			continue
		}
		if r.strategy == MatchFirstInOrder {
			return Match{Key: key, Entry: r.table.entries[key]}, true
		}
		if !found || len(key) > len(best.Key) {
			best = Match{Key: key, Entry: r.table.entries[key]}
			found = true
		}
	}
	return best, found
}
