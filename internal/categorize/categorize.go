// Package categorize assigns a fixed category to a transaction based on
// keyword matching against its free-text description.
package categorize

import (
	"strings"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

// rules are evaluated in order; the first category with a matching keyword
// wins. Matching is case-insensitive substring search.
var rules = []struct {
	category core.Category
	keywords []string
}{
	{core.Food, []string{"zomato", "swiggy", "uber eats", "food", "restaurant", "cafe", "pizza", "burger", "mcdonalds", "kfc"}},
	{core.Travel, []string{"uber", "ola", "taxi", "flight", "hotel", "booking", "travel", "train", "bus", "metro"}},
	{core.Health, []string{"pharmacy", "hospital", "clinic", "medicine", "doctor", "health", "medical"}},
	{core.Household, []string{"grocery", "supermarket", "walmart", "target", "home", "electricity", "water", "gas", "utility"}},
	{core.Income, []string{"salary", "income", "payment received", "refund", "deposit"}},
}

// Categorize maps a transaction description to a category. Descriptions
// matching no keyword list fall back to ANONYMOUS. Deterministic and
// side-effect free.
func Categorize(description string) core.Category {
	lower := strings.ToLower(description)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return core.Anonymous
}
