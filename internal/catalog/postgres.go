package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalog reads the components table written by the ingestion process.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

const componentColumns = `id::text, name, category, price_bdt, stock, specs,
	COALESCE(performance_score, 50), COALESCE(retailer, ''), COALESCE(url, ''), last_updated`

// likeEscaper makes brand terms literal inside ILIKE patterns. Backslash is the
// default LIKE escape character, so no ESCAPE clause is needed.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildQuery renders q into SQL. Spec keys are bound as parameters, never spliced.
func buildQuery(q Query) (string, []interface{}) {
	query := `SELECT ` + componentColumns + ` FROM components WHERE category = $1 AND stock = $2`
	args := []interface{}{string(q.Category), string(q.stock())}
	n := 2

	if q.MaxPrice > 0 {
		n++
		query += fmt.Sprintf(" AND price_bdt <= $%d", n)
		args = append(args, q.MaxPrice)
	}

	for _, f := range q.Filters {
		switch f.Op {
		case OpIn:
			lowered := make([]string, len(f.Values))
			for i, v := range f.Values {
				lowered[i] = strings.ToLower(v)
			}
			query += fmt.Sprintf(" AND lower(specs->>($%d::text)) = ANY($%d)", n+1, n+2)
			args = append(args, f.Key, lowered)
			n += 2
		case OpGTE:
			query += fmt.Sprintf(" AND substring(specs->>($%d::text) from '^[0-9]+')::int >= $%d", n+1, n+2)
			args = append(args, f.Key, f.Number)
			n += 2
		case OpEq:
			value := ""
			if len(f.Values) > 0 {
				value = f.Values[0]
			}
			query += fmt.Sprintf(" AND lower(specs->>($%d::text)) = lower($%d)", n+1, n+2)
			args = append(args, f.Key, value)
			n += 2
		}
	}

	var patterns []string
	for _, t := range q.ExcludeNames {
		if t = strings.TrimSpace(t); t != "" {
			patterns = append(patterns, "%"+likeEscaper.Replace(t)+"%")
		}
	}
	if len(patterns) > 0 {
		n++
		query += fmt.Sprintf(" AND NOT (name ILIKE ANY($%d))", n)
		args = append(args, patterns)
	}

	query += " ORDER BY COALESCE(performance_score, 50) DESC, price_bdt ASC, name ASC"
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, q.limit())

	return query, args
}

func (c *PostgresCatalog) Query(ctx context.Context, q Query) ([]Component, error) {
	query, args := buildQuery(q)
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query components: %w", err)
	}
	defer rows.Close()
	return scanComponents(rows)
}

func (c *PostgresCatalog) Summary(ctx context.Context) (*Summary, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT category, COUNT(*), COUNT(*) FILTER (WHERE stock = 'In Stock')
		FROM components GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("summarize components: %w", err)
	}
	defer rows.Close()

	s := &Summary{ByCategory: make(map[Category]int)}
	for rows.Next() {
		var category string
		var total, inStock int
		if err := rows.Scan(&category, &total, &inStock); err != nil {
			return nil, err
		}
		s.ByCategory[Category(category)] = total
		s.TotalComponents += total
		s.InStockComponents += inStock
	}
	return s, rows.Err()
}

func scanComponents(rows pgx.Rows) ([]Component, error) {
	var out []Component
	for rows.Next() {
		var comp Component
		var category, stock string
		var specsJSON []byte
		if err := rows.Scan(
			&comp.ID, &comp.Name, &category, &comp.Price, &stock, &specsJSON,
			&comp.PerformanceScore, &comp.Retailer, &comp.URL, &comp.LastUpdated,
		); err != nil {
			return nil, err
		}
		comp.Category = Category(category)
		comp.Stock = StockStatus(stock)
		if specsJSON != nil {
			if err := json.Unmarshal(specsJSON, &comp.Specs); err != nil {
				return nil, fmt.Errorf("decode specs of %s: %w", comp.Name, err)
			}
		}
		out = append(out, comp)
	}
	return out, rows.Err()
}
