package rules

import (
	"errors"
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
)

type Purpose string

const (
	PurposeGamingBudget    Purpose = "gaming_budget"
	PurposeGamingMid       Purpose = "gaming_mid"
	PurposeGamingHigh      Purpose = "gaming_high"
	PurposeOffice          Purpose = "office"
	PurposeProductivity    Purpose = "productivity"
	PurposeContentCreation Purpose = "content_creation"
	PurposeProgramming     Purpose = "programming"
)

// Purposes lists every accepted purpose literal.
var Purposes = []Purpose{
	PurposeGamingBudget, PurposeGamingMid, PurposeGamingHigh,
	PurposeOffice, PurposeProductivity, PurposeContentCreation, PurposeProgramming,
}

var (
	ErrUnknownPurpose = errors.New("unknown build purpose")
	ErrNoAllocation   = errors.New("no allocation table for purpose")
)

func ParsePurpose(s string) (Purpose, error) {
	for _, p := range Purposes {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPurpose, s)
}

// IsGaming reports whether p uses the GPU-first pipeline.
func (p Purpose) IsGaming() bool {
	switch p {
	case PurposeGamingBudget, PurposeGamingMid, PurposeGamingHigh:
		return true
	}
	return false
}

// Share is the budget fraction earmarked for one category.
type Share struct {
	Category catalog.Category `json:"category"`
	Fraction float64          `json:"fraction"`
}

// Allocation is a purpose's budget split. Shares are in resolution order.
type Allocation struct {
	Purpose Purpose `json:"purpose"`
	Shares  []Share `json:"shares"`
}

func (a Allocation) Fraction(c catalog.Category) float64 {
	for _, s := range a.Shares {
		if s.Category == c {
			return s.Fraction
		}
	}
	return 0
}

// Budget returns the category's share of total, rounded down to whole currency units.
func (a Allocation) Budget(c catalog.Category, total int) int {
	return int(float64(total) * a.Fraction(c))
}

func (a Allocation) Sum() float64 {
	var sum float64
	for _, s := range a.Shares {
		sum += s.Fraction
	}
	return sum
}

// Order returns the categories in resolution order.
func (a Allocation) Order() []catalog.Category {
	out := make([]catalog.Category, len(a.Shares))
	for i, s := range a.Shares {
		out[i] = s.Category
	}
	return out
}

// Validate checks that fractions are non-negative and sum to at most 1.0 (±0.001).
func (a Allocation) Validate() error {
	if a.Sum() > 1.0+0.001 {
		return fmt.Errorf("%s allocation sums to %.4f, must not exceed 1.0", a.Purpose, a.Sum())
	}
	seen := make(map[catalog.Category]bool, len(a.Shares))
	for _, s := range a.Shares {
		if s.Fraction < 0 || math.IsNaN(s.Fraction) {
			return fmt.Errorf("%s allocation has invalid fraction %f for %s", a.Purpose, s.Fraction, s.Category)
		}
		if seen[s.Category] {
			return fmt.Errorf("%s allocation lists %s twice", a.Purpose, s.Category)
		}
		seen[s.Category] = true
	}
	return nil
}

var allocations = map[Purpose]Allocation{
	PurposeGamingBudget: {Purpose: PurposeGamingBudget, Shares: []Share{
		{catalog.CategoryGPU, 0.35},
		{catalog.CategoryCPU, 0.20},
		{catalog.CategoryMotherboard, 0.10},
		{catalog.CategoryRAM, 0.12},
		{catalog.CategoryStorage, 0.08},
		{catalog.CategoryPSU, 0.08},
		{catalog.CategoryCase, 0.05},
		{catalog.CategoryCooling, 0.02},
	}},
	PurposeGamingMid: {Purpose: PurposeGamingMid, Shares: []Share{
		{catalog.CategoryGPU, 0.40},
		{catalog.CategoryCPU, 0.22},
		{catalog.CategoryMotherboard, 0.08},
		{catalog.CategoryRAM, 0.12},
		{catalog.CategoryStorage, 0.08},
		{catalog.CategoryPSU, 0.06},
		{catalog.CategoryCase, 0.03},
		{catalog.CategoryCooling, 0.01},
	}},
	PurposeGamingHigh: {Purpose: PurposeGamingHigh, Shares: []Share{
		{catalog.CategoryGPU, 0.45},
		{catalog.CategoryCPU, 0.25},
		{catalog.CategoryMotherboard, 0.08},
		{catalog.CategoryRAM, 0.10},
		{catalog.CategoryStorage, 0.06},
		{catalog.CategoryPSU, 0.04},
		{catalog.CategoryCase, 0.02},
		{catalog.CategoryCooling, 0.00},
	}},
	PurposeOffice: {Purpose: PurposeOffice, Shares: []Share{
		{catalog.CategoryCPU, 0.30},
		{catalog.CategoryMotherboard, 0.15},
		{catalog.CategoryRAM, 0.20},
		{catalog.CategoryStorage, 0.20},
		{catalog.CategoryGPU, 0.05},
		{catalog.CategoryPSU, 0.05},
		{catalog.CategoryCase, 0.05},
	}},
	PurposeProductivity: {Purpose: PurposeProductivity, Shares: []Share{
		{catalog.CategoryCPU, 0.35},
		{catalog.CategoryMotherboard, 0.10},
		{catalog.CategoryRAM, 0.25},
		{catalog.CategoryStorage, 0.15},
		{catalog.CategoryGPU, 0.08},
		{catalog.CategoryPSU, 0.05},
		{catalog.CategoryCase, 0.02},
	}},
	PurposeContentCreation: {Purpose: PurposeContentCreation, Shares: []Share{
		{catalog.CategoryCPU, 0.30},
		{catalog.CategoryMotherboard, 0.08},
		{catalog.CategoryRAM, 0.20},
		{catalog.CategoryStorage, 0.10},
		{catalog.CategoryGPU, 0.25},
		{catalog.CategoryPSU, 0.05},
		{catalog.CategoryCase, 0.02},
	}},
}

// AllocationFor returns the allocation for p. The returned value shares no memory
// with the package tables.
func AllocationFor(p Purpose) (Allocation, error) {
	a, ok := allocations[p]
	if !ok {
		if _, err := ParsePurpose(string(p)); err != nil {
			return Allocation{}, err
		}
		return Allocation{}, fmt.Errorf("%w %q", ErrNoAllocation, p)
	}
	shares := make([]Share, len(a.Shares))
	copy(shares, a.Shares)
	return Allocation{Purpose: a.Purpose, Shares: shares}, nil
}
