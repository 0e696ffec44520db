package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

// BuildRequirements is what a caller asks for. It is not modified by assembly.
type BuildRequirements struct {
	Purpose      rules.Purpose  `json:"purpose"`
	Budget       int            `json:"budget"`
	Preferences  map[string]any `json:"preferences,omitempty"`
	PreferBrands []string       `json:"prefer_brands,omitempty"`
	AvoidBrands  []string       `json:"avoid_brands,omitempty"`
}

func (r BuildRequirements) Validate() error {
	if r.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive, got %d", ErrInvalidRequirements, r.Budget)
	}
	if _, err := rules.ParsePurpose(string(r.Purpose)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequirements, err)
	}
	return nil
}

func (r BuildRequirements) brandPreferences() Preferences {
	return Preferences{
		PreferBrands: nonEmpty(r.PreferBrands),
		AvoidBrands:  nonEmpty(r.AvoidBrands),
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Build is a completed recommendation. Optional categories may be missing from
// Components.
type Build struct {
	Components           map[catalog.Category]catalog.Component `json:"build"`
	Tiers                map[catalog.Category]rules.Tier        `json:"tiers,omitempty"`
	TotalPrice           int                                    `json:"total_price"`
	Budget               int                                    `json:"budget"`
	RemainingBudget      int                                    `json:"remaining_budget"`
	AvgPerformanceScore  float64                                `json:"avg_performance_score"`
	Purpose              rules.Purpose                          `json:"build_purpose"`
	CompatibilityChecked bool                                   `json:"compatibility_checked"`
	Bottlenecks          Analysis                               `json:"bottleneck_analysis"`
}

// Component returns the part chosen for category, if any.
func (b *Build) Component(c catalog.Category) (catalog.Component, bool) {
	comp, ok := b.Components[c]
	return comp, ok
}

func (b *Build) Has(c catalog.Category) bool {
	_, ok := b.Components[c]
	return ok
}

// Categories lists the present categories in catalog order.
func (b *Build) Categories() []catalog.Category {
	var out []catalog.Category
	for _, c := range catalog.Categories {
		if b.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func newBuild(req BuildRequirements, components map[catalog.Category]catalog.Component) *Build {
	b := &Build{
		Components:           components,
		Tiers:                make(map[catalog.Category]rules.Tier),
		Budget:               req.Budget,
		Purpose:              req.Purpose,
		CompatibilityChecked: true,
	}
	sum := 0
	for c, comp := range components {
		b.TotalPrice += comp.Price
		sum += comp.PerformanceScore
		if c == catalog.CategoryCPU || c == catalog.CategoryGPU {
			b.Tiers[c] = rules.Classify(c, comp.Name)
		}
	}
	b.RemainingBudget = req.Budget - b.TotalPrice
	if len(components) > 0 {
		b.AvgPerformanceScore = roundTenth(float64(sum) / float64(len(components)))
	}
	b.Bottlenecks = Analyze(b)
	return b
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
