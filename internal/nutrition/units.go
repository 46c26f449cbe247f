package nutrition

// FoodUnits is the fixed list of units a menu item may be entered in.
var FoodUnits = []string{
	"piece",
	"pieces",
	"g",
	"100g",
	"kg",
	"ml",
	"100ml",
	"liter",
	"cup",
	"bowl",
	"glass",
	"scoop",
	"tbsp",
	"tsp",
	"slice",
	"serving",
}

// massUnits convert to grams directly, whatever the food.
var massUnits = map[string]float64{
	"g":     1,
	"100g":  100,
	"kg":    1000,
	"ml":    1, // water-based approximation
	"100ml": 100,
	"liter": 1000,
}

// unitGrams holds approximate grams for colloquial units. Used only when the
// food itself has no GramsPerUnit.
var unitGrams = map[string]float64{
	"piece":   50,
	"pieces":  50,
	"cup":     240,
	"bowl":    300,
	"glass":   250,
	"scoop":   30,
	"tbsp":    15,
	"tsp":     5,
	"slice":   30,
	"serving": 150,
}

// fallbackGramsPerUnit is used for units nobody knows how to weigh.
const fallbackGramsPerUnit = 100

// ValidUnit reports whether unit is one of FoodUnits.
func ValidUnit(unit string) bool {
	for _, u := range FoodUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// GramsPerUnit returns the approximate grams in one unit, from the mass
// family or the colloquial table.
func GramsPerUnit(unit string) (float64, bool) {
	if g, ok := massUnits[unit]; ok {
		return g, true
	}
	g, ok := unitGrams[unit]
	return g, ok
}

// Grams converts quantity×unit to grams. Mass units convert directly; any
// other unit uses foodGramsPerUnit when positive, then the unit table, then
// fallbackGramsPerUnit.
func Grams(quantity float64, unit string, foodGramsPerUnit float64) float64 {
	if g, ok := massUnits[unit]; ok {
		return quantity * g
	}
	if foodGramsPerUnit > 0 {
		return quantity * foodGramsPerUnit
	}
	if g, ok := unitGrams[unit]; ok {
		return quantity * g
	}
	return quantity * fallbackGramsPerUnit
}
