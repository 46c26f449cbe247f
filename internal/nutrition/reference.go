package nutrition

func per100g(name string, protein, calories float64, unit string, gramsPerUnit float64) Item {
	return Item{Name: name, Entry: Entry{
		Protein:      protein,
		Calories:     calories,
		DefaultUnit:  unit,
		GramsPerUnit: gramsPerUnit,
		Basis:        BasisPer100g,
	}}
}

// referenceItems is the built-in food table. Values are per 100g. Order
// matters: containment fallback matching walks this list top to bottom.
var referenceItems = []Item{
	// eggs & dairy
	per100g("egg", 12, 140, "piece", 50),
	per100g("eggs", 12, 140, "piece", 50),
	per100g("boiled egg", 12, 140, "piece", 50),
	per100g("boiled eggs", 12, 140, "piece", 50),
	per100g("scrambled eggs", 10, 150, "piece", 60),
	per100g("omelette", 11, 150, "piece", 110),
	per100g("milk", 3.4, 42, "glass", 250),
	per100g("paneer", 18, 265, "100g", 0),
	per100g("cottage cheese", 11, 98, "100g", 0),
	per100g("curd", 3.5, 60, "bowl", 200),
	per100g("yogurt", 10, 100, "bowl", 200),
	per100g("greek yogurt", 10, 100, "bowl", 200),
	per100g("cheese", 25, 400, "slice", 20),
	per100g("butter", 1, 720, "tbsp", 10),

	// meat & poultry
	per100g("chicken breast", 31, 165, "100g", 0),
	per100g("chicken", 27, 239, "100g", 0),
	per100g("grilled chicken", 31, 165, "100g", 0),
	per100g("chicken thigh", 26, 209, "100g", 0),
	per100g("mutton", 25, 294, "100g", 0),
	per100g("fish", 22, 130, "100g", 0),
	per100g("salmon", 20, 208, "100g", 0),
	per100g("tuna", 30, 130, "100g", 0),
	per100g("prawns", 24, 99, "100g", 0),
	per100g("shrimp", 24, 99, "100g", 0),

	// legumes & pulses
	per100g("dal", 9, 120, "bowl", 200),
	per100g("lentils", 9, 116, "bowl", 200),
	per100g("chickpeas", 8.9, 164, "100g", 0),
	per100g("chana", 8.9, 164, "bowl", 200),
	per100g("rajma", 8.7, 127, "bowl", 200),
	per100g("kidney beans", 8.7, 127, "100g", 0),
	per100g("moong dal", 7, 105, "bowl", 200),
	per100g("sprouts", 4, 31, "bowl", 100),
	per100g("soybean", 36, 446, "100g", 0),
	per100g("tofu", 8, 76, "100g", 0),

	// grains & cereals
	per100g("rice", 2.7, 130, "bowl", 200),
	per100g("brown rice", 2.6, 111, "bowl", 200),
	per100g("oats", 13, 389, "bowl", 40),
	per100g("oatmeal", 5, 150, "bowl", 250),
	per100g("wheat bread", 9, 250, "slice", 30),
	per100g("bread", 8, 250, "slice", 30),
	per100g("roti", 8, 200, "piece", 35),
	per100g("chapati", 8, 200, "piece", 35),
	per100g("paratha", 6, 260, "piece", 60),
	per100g("poha", 2, 130, "bowl", 250),
	per100g("upma", 3, 130, "bowl", 250),
	per100g("idli", 4, 80, "piece", 50),
	per100g("dosa", 4, 133, "piece", 100),

	// supplements & protein
	per100g("whey protein", 80, 400, "scoop", 30),
	per100g("protein shake", 80, 400, "scoop", 30),
	per100g("protein powder", 80, 400, "scoop", 30),
	per100g("peanut butter", 25, 590, "tbsp", 32),
	per100g("almonds", 21, 579, "g", 0),
	per100g("peanuts", 26, 567, "g", 0),
	per100g("walnuts", 15, 654, "g", 0),
	per100g("cashews", 18, 553, "g", 0),

	// fruits & vegetables
	per100g("banana", 1.1, 89, "piece", 120),
	per100g("apple", 0.3, 52, "piece", 180),
	per100g("mango", 0.8, 60, "piece", 200),
	per100g("orange", 0.9, 47, "piece", 130),
	per100g("spinach", 2.9, 23, "100g", 0),
	per100g("broccoli", 2.8, 34, "100g", 0),
	per100g("potato", 2, 77, "piece", 150),
	per100g("sweet potato", 1.6, 86, "piece", 130),
	per100g("avocado", 2, 160, "piece", 200),

	// beverages
	per100g("black coffee", 0.1, 1, "cup", 240),
	per100g("coffee", 0.1, 1, "cup", 240),
	per100g("tea", 0, 1, "cup", 240),
	per100g("green tea", 0, 0, "cup", 240),
	per100g("buttermilk", 3.3, 40, "glass", 250),
	per100g("lassi", 2.5, 60, "glass", 250),
	per100g("coconut water", 0.7, 19, "glass", 250),
}

var defaultTable = MustTable(referenceItems...)

// DefaultTable returns the built-in reference table. It is shared and must
// not be modified; use Prepend to layer foods over it.
func DefaultTable() *Table {
	return defaultTable
}
