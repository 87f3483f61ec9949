// Package category maps free-text transaction descriptions onto the fixed
// spending taxonomy using keyword matching.
package category

import (
	"strings"

	"github.com/verdict-finance/verdict/internal/model"
)

// keywords holds the substring sets for each category. Matching walks
// model.Categories in declaration order, so a description containing
// keywords from several categories lands in the earliest-declared one.
var keywords = map[model.Category][]string{
	model.CategoryTransport:     {"uber", "ola", "metro", "bus", "petrol", "diesel", "fuel", "parking", "taxi", "auto"},
	model.CategoryEducation:     {"school", "college", "university", "course", "tuition", "book", "education", "study"},
	model.CategoryMedical:       {"hospital", "clinic", "doctor", "pharmacy", "medicine", "medical", "health"},
	model.CategoryFoodShopping:  {"restaurant", "cafe", "zomato", "swiggy", "food", "mall", "shopping", "amazon", "flipkart"},
	model.CategoryGroceries:     {"grocery", "supermarket", "mart", "vegetable", "fruits", "dmart", "bigbazaar"},
	model.CategoryEMI:           {"emi", "loan", "credit card", "installment", "finance"},
	model.CategoryEntertainment: {"movie", "cinema", "netflix", "spotify", "gaming", "entertainment", "concert"},
}

// Classifier assigns taxonomy categories to transaction descriptions.
// It is a pure function wrapper with no state and no failure mode.
type Classifier struct{}

// NewClassifier creates a new keyword classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the first category whose keyword set has a substring
// match against the lower-cased description, falling back to others.
func (c *Classifier) Classify(description string) model.Category {
	description = strings.ToLower(description)

	for _, cat := range model.Categories {
		for _, keyword := range keywords[cat] {
			if strings.Contains(description, keyword) {
				return cat
			}
		}
	}

	return model.CategoryOthers
}
