package rules

import (
	"strings"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
)

type Tier string

const (
	TierHigh Tier = "HIGH"
	TierMid  Tier = "MID"
	TierLow  Tier = "LOW"
)

// TierRule assigns Tier to any name containing one of Keywords.
type TierRule struct {
	Tier     Tier
	Keywords []string
}

// tierRules are evaluated in slice order; the first matching rule wins. Keeping HIGH
// ahead of MID is what separates "4070 ti" from "4070" and MID ahead of LOW separates
// "4060 ti" from "4060".
var tierRules = map[catalog.Category][]TierRule{
	catalog.CategoryCPU: {
		{TierHigh, []string{"i9", "i7", "ryzen 9", "ryzen 7"}},
		{TierMid, []string{"i5", "ryzen 5"}},
		{TierLow, []string{"i3", "ryzen 3", "pentium", "celeron"}},
	},
	catalog.CategoryGPU: {
		{TierHigh, []string{"4090", "4080", "4070 ti", "3080", "3070 ti"}},
		{TierMid, []string{"4070", "4060 ti", "3070", "3060 ti", "6700"}},
		{TierLow, []string{"4060", "3060", "1660", "1650"}},
	},
}

// normalizeName lowercases name and folds "_", "-" and whitespace runs into single
// spaces, so "RTX_4070-Ti" reads as "rtx 4070 ti".
func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// Classify buckets a component name into a tier. Categories without rules and names
// matching no keyword are MID.
func Classify(category catalog.Category, name string) Tier {
	lower := normalizeName(name)
	for _, rule := range tierRules[category] {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Tier
			}
		}
	}
	return TierMid
}
