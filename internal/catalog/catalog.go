package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Category string

const (
	CategoryCPU         Category = "CPU"
	CategoryGPU         Category = "GPU"
	CategoryRAM         Category = "RAM"
	CategoryMotherboard Category = "Motherboard"
	CategoryStorage     Category = "Storage"
	CategoryPSU         Category = "PSU"
	CategoryCase        Category = "Case"
	CategoryCooling     Category = "Cooling"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryCPU, CategoryGPU, CategoryRAM, CategoryMotherboard,
	CategoryStorage, CategoryPSU, CategoryCase, CategoryCooling,
}

// ParseCategory accepts the exact literal or any casing of it ("gpu", "MOTHERBOARD").
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type StockStatus string

const (
	StockInStock    StockStatus = "In Stock"
	StockOutOfStock StockStatus = "Out of Stock"
)

// Spec keys the engine reads. Ingestion may store any other keys as well.
const (
	SpecSocket  = "socket"
	SpecChipset = "chipset"
	SpecWattage = "wattage"
	SpecType    = "type"
)

type Component struct {
	ID               string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string         `json:"name" yaml:"name"`
	Category         Category       `json:"category" yaml:"category"`
	Price            int            `json:"price_BDT" yaml:"price"`
	Stock            StockStatus    `json:"stock" yaml:"stock"`
	Specs            map[string]any `json:"specs,omitempty" yaml:"specs,omitempty"`
	PerformanceScore int            `json:"performance_score" yaml:"performance_score"`
	Retailer         string         `json:"retailer,omitempty" yaml:"retailer,omitempty"`
	URL              string         `json:"url,omitempty" yaml:"url,omitempty"`
	LastUpdated      time.Time      `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
}

// SpecString returns a spec value as a trimmed string, or "" when absent.
func (c *Component) SpecString(key string) string {
	v, ok := c.Specs[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// SpecInt returns a numeric spec value. Strings such as "650W" are read up to the
// first non-digit.
func (c *Component) SpecInt(key string) (int, bool) {
	v, ok := c.Specs[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		s := strings.TrimSpace(n)
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == 0 {
			return 0, false
		}
		i, err := strconv.Atoi(s[:end])
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

type FilterOp string

const (
	OpIn  FilterOp = "in"
	OpGTE FilterOp = "gte"
	OpEq  FilterOp = "eq"
)

// SpecFilter restricts a query on one spec key. In uses Values, GTE uses Number,
// Eq uses Values[0]. String comparisons are case-insensitive.
type SpecFilter struct {
	Key    string
	Op     FilterOp
	Values []string
	Number int
}

func In(key string, values ...string) SpecFilter {
	return SpecFilter{Key: key, Op: OpIn, Values: values}
}

func AtLeast(key string, n int) SpecFilter {
	return SpecFilter{Key: key, Op: OpGTE, Number: n}
}

func Equals(key, value string) SpecFilter {
	return SpecFilter{Key: key, Op: OpEq, Values: []string{value}}
}

// Matches reports whether c satisfies the filter.
func (f SpecFilter) Matches(c *Component) bool {
	switch f.Op {
	case OpIn:
		v := c.SpecString(f.Key)
		for _, want := range f.Values {
			if strings.EqualFold(v, want) {
				return true
			}
		}
		return false
	case OpGTE:
		n, ok := c.SpecInt(f.Key)
		return ok && n >= f.Number
	case OpEq:
		return len(f.Values) > 0 && strings.EqualFold(c.SpecString(f.Key), f.Values[0])
	}
	return false
}

const (
	DefaultQueryLimit = 10
	MaxQueryLimit     = 100
)

type Query struct {
	Category Category
	// MaxPrice of 0 means unbounded.
	MaxPrice int
	// Stock defaults to StockInStock.
	Stock   StockStatus
	Filters []SpecFilter
	// ExcludeNames drops components whose name contains any term (case-insensitive).
	ExcludeNames []string
	Limit        int
}

func (q Query) stock() StockStatus {
	if q.Stock == "" {
		return StockInStock
	}
	return q.Stock
}

func (q Query) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultQueryLimit
	case q.Limit > MaxQueryLimit:
		return MaxQueryLimit
	}
	return q.Limit
}

type Summary struct {
	TotalComponents   int              `json:"total_components"`
	InStockComponents int              `json:"in_stock_components"`
	ByCategory        map[Category]int `json:"by_category"`
}

// Catalog is the read-only component source. Results are ordered by performance
// score descending, then price ascending, then name.
type Catalog interface {
	Query(ctx context.Context, q Query) ([]Component, error)
	Summary(ctx context.Context) (*Summary, error)
}
