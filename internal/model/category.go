package model

// Category is one bucket of the fixed spending taxonomy.
type Category string

// Spending categories, in declaration order. Classification ties resolve
// to the earliest-declared matching category, so the order is load-bearing.
const (
	CategoryTransport     Category = "transport"
	CategoryEducation     Category = "education"
	CategoryMedical       Category = "medical"
	CategoryFoodShopping  Category = "food_shopping"
	CategoryGroceries     Category = "groceries"
	CategoryEMI           Category = "emi"
	CategoryEntertainment Category = "entertainment"
	CategoryOthers        Category = "others"
)

// Categories lists every taxonomy category in declaration order.
var Categories = []Category{
	CategoryTransport,
	CategoryEducation,
	CategoryMedical,
	CategoryFoodShopping,
	CategoryGroceries,
	CategoryEMI,
	CategoryEntertainment,
	CategoryOthers,
}

// DefaultThresholds holds the stock per-category spending limits as a
// fraction of monthly income. Overridable via configuration at startup.
var DefaultThresholds = map[Category]float64{
	CategoryTransport:     0.15,
	CategoryEducation:     0.10,
	CategoryMedical:       0.08,
	CategoryFoodShopping:  0.25,
	CategoryGroceries:     0.15,
	CategoryEMI:           0.35,
	CategoryEntertainment: 0.10,
	CategoryOthers:        0.10,
}

// Valid reports whether the category belongs to the taxonomy.
func (c Category) Valid() bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}
