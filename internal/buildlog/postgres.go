package buildlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const recordColumns = `id, purpose, budget, COALESCE(total_price, 0), build, requirements, error, source, created_at`

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	var buildJSON []byte
	if rec.Build != nil {
		b, err := json.Marshal(rec.Build)
		if err != nil {
			return fmt.Errorf("marshal build: %w", err)
		}
		buildJSON = b
	}
	reqJSON, _ := json.Marshal(rec.Requirements)

	var totalPrice *int
	if rec.Build != nil {
		totalPrice = &rec.TotalPrice
	}
	var errText *string
	if rec.Error != "" {
		errText = &rec.Error
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO build_logs (purpose, budget, total_price, build, requirements, error, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		rec.Purpose, rec.Budget, totalPrice, buildJSON, reqJSON, errText, rec.Source,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	r, err := scanRecord(s.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM build_logs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM build_logs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Purpose != "" {
		n++
		query += fmt.Sprintf(" AND purpose = $%d", n)
		args = append(args, string(filter.Purpose))
	}
	if filter.Source != "" {
		n++
		query += fmt.Sprintf(" AND source = $%d", n)
		args = append(args, string(filter.Source))
	}

	n++
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", n)
	args = append(args, filter.limit())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT purpose,
			COUNT(*) FILTER (WHERE error IS NULL),
			COUNT(*) FILTER (WHERE error IS NOT NULL),
			COALESCE(AVG(total_price) FILTER (WHERE error IS NULL), 0)::float8
		FROM build_logs
		GROUP BY purpose
		ORDER BY purpose`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{ByPurpose: []PurposeStats{}}
	for rows.Next() {
		var ps PurposeStats
		if err := rows.Scan(&ps.Purpose, &ps.Succeeded, &ps.Failed, &ps.AvgTotalPrice); err != nil {
			return nil, err
		}
		stats.add(ps)
	}
	return stats, rows.Err()
}

func (s *Stats) add(ps PurposeStats) {
	s.ByPurpose = append(s.ByPurpose, ps)
	s.Succeeded += ps.Succeeded
	s.Failed += ps.Failed
	s.Total += ps.Succeeded + ps.Failed
}

func scanRecords(rows pgx.Rows) ([]*Record, error) {
	var recs []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	r := &Record{}
	var buildJSON, reqJSON []byte
	var errText sql.NullString
	if err := row.Scan(
		&r.ID, &r.Purpose, &r.Budget, &r.TotalPrice, &buildJSON, &reqJSON,
		&errText, &r.Source, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	if errText.Valid {
		r.Error = errText.String
	}
	if buildJSON != nil {
		if err := json.Unmarshal(buildJSON, &r.Build); err != nil {
			return nil, fmt.Errorf("decode build %s: %w", r.ID, err)
		}
	}
	if reqJSON != nil {
		_ = json.Unmarshal(reqJSON, &r.Requirements)
	}
	return r, nil
}
