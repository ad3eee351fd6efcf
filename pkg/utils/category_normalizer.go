package utils

import (
	"strings"
)

// categoryAliases maps common submitted spellings to canonical category names.
// Owners type categories free-form, so the directory canonicalizes them before
// storage and indexing to keep facet filters usable.
var categoryAliases = map[string]string{
	"restaurants":    "Restaurant",
	"food":           "Restaurant",
	"eatery":         "Restaurant",
	"cafes":          "Cafe",
	"coffee shop":    "Cafe",
	"coffee":         "Cafe",
	"barber":         "Barbershop",
	"barbers":        "Barbershop",
	"hair salon":     "Salon",
	"salons":         "Salon",
	"grocery":        "Grocery Store",
	"groceries":      "Grocery Store",
	"supermarket":    "Grocery Store",
	"auto repair":    "Auto Shop",
	"mechanic":       "Auto Shop",
	"car repair":     "Auto Shop",
	"gym":            "Fitness",
	"fitness center": "Fitness",
	"bookshop":       "Bookstore",
	"books":          "Bookstore",
	"clothes":        "Clothing",
	"apparel":        "Clothing",
	"boutique":       "Clothing",
}

// NormalizeCategories canonicalizes and deduplicates a category list.
// Blank entries are dropped, known aliases collapse to their canonical
// name, and anything else is title-cased. Order of first appearance is
// preserved.
func NormalizeCategories(categories []string) []string {
	if len(categories) == 0 {
		return categories
	}

	seen := make(map[string]struct{}, len(categories))
	normalized := make([]string, 0, len(categories))

	for _, category := range categories {
		canonical := NormalizeCategory(category)
		if canonical == "" {
			continue
		}
		key := strings.ToLower(canonical)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, canonical)
	}

	return normalized
}

// NormalizeCategory canonicalizes a single category name
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return ""
	}

	lowered := strings.ToLower(trimmed)
	if canonical, ok := categoryAliases[lowered]; ok {
		return canonical
	}

	return titleCase(lowered)
}

// titleCase uppercases the first letter of each word
func titleCase(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
