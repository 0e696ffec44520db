package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryCatalog serves queries from an in-process snapshot. Replace swaps the whole
// snapshot, so concurrent queries see either the old or the new set.
type MemoryCatalog struct {
	mu         sync.RWMutex
	components []Component
}

func NewMemoryCatalog(components []Component) *MemoryCatalog {
	m := &MemoryCatalog{}
	m.Replace(components)
	return m
}

type snapshotFile struct {
	Components []Component `yaml:"components" json:"components"`
}

// LoadFile reads a YAML or JSON snapshot ({"components": [...]}).
func LoadFile(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var snap snapshotFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &snap)
	} else {
		err = yaml.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i := range snap.Components {
		c := &snap.Components[i]
		if c.Stock == "" {
			c.Stock = StockInStock
		}
		if c.Category == "" {
			return nil, fmt.Errorf("parse catalog: component %q has no category", c.Name)
		}
		cat, err := ParseCategory(string(c.Category))
		if err != nil {
			return nil, fmt.Errorf("parse catalog: component %q: %w", c.Name, err)
		}
		c.Category = cat
	}
	return NewMemoryCatalog(snap.Components), nil
}

func (m *MemoryCatalog) Replace(components []Component) {
	cp := make([]Component, len(components))
	copy(cp, components)
	m.mu.Lock()
	m.components = cp
	m.mu.Unlock()
}

func (m *MemoryCatalog) Query(ctx context.Context, q Query) ([]Component, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Component
	for i := range m.components {
		c := &m.components[i]
		if c.Category != q.Category || c.Stock != q.stock() {
			continue
		}
		if q.MaxPrice > 0 && c.Price > q.MaxPrice {
			continue
		}
		if excluded(c.Name, q.ExcludeNames) {
			continue
		}
		ok := true
		for _, f := range q.Filters {
			if !f.Matches(c) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, *c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PerformanceScore != out[j].PerformanceScore {
			return out[i].PerformanceScore > out[j].PerformanceScore
		}
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Name < out[j].Name
	})

	if n := q.limit(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *MemoryCatalog) Summary(ctx context.Context) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := &Summary{ByCategory: make(map[Category]int)}
	for _, c := range m.components {
		s.TotalComponents++
		if c.Stock == StockInStock {
			s.InStockComponents++
		}
		s.ByCategory[c.Category]++
	}
	return s, nil
}

func excluded(name string, terms []string) bool {
	lower := strings.ToLower(name)
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
