package api

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/engine"
)

var printer = message.NewPrinter(language.English)

// Taka formats an amount with digit grouping, e.g. ৳40,000.
func Taka(amount int) string {
	return printer.Sprintf("৳%d", amount)
}

var explanations = map[catalog.Category]string{
	catalog.CategoryGPU:         "Selected %s (%s) for its price-to-performance ratio in your budget range.",
	catalog.CategoryCPU:         "Chose %s (%s) to pair with the rest of the build without bottlenecks.",
	catalog.CategoryMotherboard: "Picked %s (%s) because its chipset supports the chosen CPU socket.",
	catalog.CategoryRAM:         "Selected %s (%s) in the memory generation the platform requires.",
	catalog.CategoryStorage:     "Chose %s (%s) for fast boot times and application loading.",
	catalog.CategoryPSU:         "Selected %s (%s) to cover the estimated power draw with headroom.",
	catalog.CategoryCase:        "Housed in %s (%s) using the budget left after the core parts.",
	catalog.CategoryCooling:     "Added %s (%s) to keep the CPU cool under load.",
}

// ExplainBuild returns one sentence per present category.
func ExplainBuild(b *engine.Build) map[catalog.Category]string {
	out := make(map[catalog.Category]string)
	if b == nil {
		return out
	}
	for _, c := range b.Categories() {
		comp, _ := b.Component(c)
		out[c] = printer.Sprintf(explanations[c], comp.Name, Taka(comp.Price))
	}
	return out
}

type Insights struct {
	Recommendations []string `json:"recommendations"`
}

func CompareInsights(c engine.Comparison) Insights {
	in := Insights{Recommendations: []string{}}
	if b := c.BestValueBuild(); b != nil {
		in.Recommendations = append(in.Recommendations,
			printer.Sprintf("Best value build: %s at %s", b.Purpose, Taka(b.TotalPrice)))
	}
	if b := c.BestPerformanceBuild(); b != nil {
		in.Recommendations = append(in.Recommendations,
			printer.Sprintf("Highest performance build: %s with %.1f performance score", b.Purpose, b.AvgPerformanceScore))
	}
	if b := c.CheapestBuild(); b != nil && len(c.Builds) > 1 {
		in.Recommendations = append(in.Recommendations,
			printer.Sprintf("Cheapest build: %s for a %s budget", Taka(b.TotalPrice), Taka(b.Budget)))
	}
	return in
}
