package engine

import (
	"context"
	"strings"

	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
)

// Preferences are the caller's brand lists. Avoided brands never reach ranking;
// preferred brands win whenever at least one candidate carries one.
type Preferences struct {
	PreferBrands []string
	AvoidBrands  []string
}

type Selector struct {
	catalog catalog.Catalog
	limit   int
}

func NewSelector(c catalog.Catalog, limit int) *Selector {
	if limit <= 0 {
		limit = catalog.DefaultQueryLimit
	}
	return &Selector{catalog: c, limit: limit}
}

// ValueScore weighs performance against how far below the ceiling the price sits:
//
//	perf*0.7 + (100 - price/ceiling*50)*0.3
//
// Price efficiency is not clamped, so very cheap parts can score past 100.
func ValueScore(performance, price, ceiling int) float64 {
	if ceiling <= 0 {
		return 0
	}
	priceEfficiency := 100 - (float64(price)/float64(ceiling))*50
	return float64(performance)*0.7 + priceEfficiency*0.3
}

// Select returns the best-value in-stock component of category priced at or under
// ceiling that satisfies the constraints applicable to category.
func (s *Selector) Select(ctx context.Context, category catalog.Category, ceiling int, cs ConstraintSet, prefs Preferences) (*catalog.Component, error) {
	if ceiling <= 0 {
		return nil, ErrNotFound
	}

	candidates, err := s.catalog.Query(ctx, catalog.Query{
		Category:     category,
		MaxPrice:     ceiling,
		Stock:        catalog.StockInStock,
		Filters:      cs.FiltersFor(category),
		ExcludeNames: prefs.AvoidBrands,
		Limit:        s.limit,
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	if preferred := withBrands(candidates, prefs.PreferBrands); len(preferred) > 0 {
		candidates = preferred
	}

	best := -1
	var bestScore float64
	for i := range candidates {
		score := ValueScore(candidates[i].PerformanceScore, candidates[i].Price, ceiling)
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	chosen := candidates[best]
	return &chosen, nil
}

func withBrands(candidates []catalog.Component, brands []string) []catalog.Component {
	if len(brands) == 0 {
		return nil
	}
	var out []catalog.Component
	for _, c := range candidates {
		name := strings.ToLower(c.Name)
		for _, b := range brands {
			b = strings.ToLower(strings.TrimSpace(b))
			if b != "" && strings.Contains(name, b) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
