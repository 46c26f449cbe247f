package nutrition

// Totaler is anything carrying saved nutrition totals.
type Totaler interface {
	NutritionTotals() (protein, calories float64)
}

// DailyTotals is the sum over a user's menu items.
type DailyTotals struct {
	TotalProtein  float64 `json:"total_protein"`
	TotalCalories float64 `json:"total_calories"`
}

// Aggregate sums every item then rounds once: protein to one decimal,
// calories to an integer.
func Aggregate[T Totaler](items []T) DailyTotals {
	var protein, calories float64
	for _, it := range items {
		p, c := it.NutritionTotals()
		protein += p
		calories += c
	}
	return DailyTotals{
		TotalProtein:  Round1(protein),
		TotalCalories: Round0(calories),
	}
}
