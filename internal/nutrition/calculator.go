package nutrition

import "math"

// Result is the nutrition computed for one food entry.
type Result struct {
	TotalProtein      float64 `json:"total_protein"`
	TotalCalories     float64 `json:"total_calories"`
	ReferenceProtein  float64 `json:"reference_protein"`
	ReferenceCalories float64 `json:"reference_calories"`
	Basis             Basis   `json:"basis,omitempty"`
	MatchedKey        string  `json:"matched_key,omitempty"`
	IsFromReference   bool    `json:"is_from_reference"`
}

// Calculator resolves foods and scales their reference values. It holds no
// mutable state and is safe for concurrent use.
type Calculator struct {
	resolver *Resolver
}

// NewCalculator returns a calculator backed by resolver.
func NewCalculator(resolver *Resolver) *Calculator {
	return &Calculator{resolver: resolver}
}

var defaultCalculator = NewCalculator(NewResolver(DefaultTable(), MatchFirstInOrder))

// Calculate uses the built-in table with first-in-order matching.
func Calculate(foodName string, quantity float64, unit string) Result {
	return defaultCalculator.Calculate(foodName, quantity, unit)
}

// Calculate resolves foodName and computes totals for quantity×unit. An
// unknown food yields zero totals with IsFromReference false.
func (c *Calculator) Calculate(foodName string, quantity float64, unit string) Result {
	m, ok := c.resolver.Resolve(foodName)
	if !ok {
		return Result{}
	}
	protein, calories := Totals(m.Entry, quantity, unit)
	return Result{
		TotalProtein:      protein,
		TotalCalories:     calories,
		ReferenceProtein:  m.Protein,
		ReferenceCalories: m.Calories,
		Basis:             m.Basis,
		MatchedKey:        m.Key,
		IsFromReference:   true,
	}
}

// Resolve exposes the underlying resolver.
func (c *Calculator) Resolve(foodName string) (Match, bool) {
	return c.resolver.Resolve(foodName)
}

// Totals scales an entry to quantity×unit. Per-100g entries go through a
// gram conversion; per-unit entries take quantity as already being in the
// entry's default unit.
func Totals(e Entry, quantity float64, unit string) (protein, calories float64) {
	if e.Basis == BasisPerUnit {
		return Round1(e.Protein * quantity), Round0(e.Calories * quantity)
	}
	grams := Grams(quantity, unit, e.GramsPerUnit)
	return Round1(grams / 100 * e.Protein), Round0(grams / 100 * e.Calories)
}

// Round1 rounds half-up to one decimal place.
func Round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// Round0 rounds half-up to an integer.
func Round0(x float64) float64 {
	return math.Floor(x + 0.5)
}
