package buildlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Rigger/internal/engine"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

type Source string

const (
	SourceAPI     Source = "api"
	SourceNATS    Source = "nats"
	SourceCompare Source = "compare"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Record is one recommendation attempt. Build is nil when the attempt failed.
type Record struct {
	ID           uuid.UUID                `json:"build_id"`
	Purpose      rules.Purpose            `json:"purpose"`
	Budget       int                      `json:"budget"`
	TotalPrice   int                      `json:"total_price"`
	Build        *engine.Build            `json:"build,omitempty"`
	Requirements engine.BuildRequirements `json:"requirements"`
	Error        string                   `json:"error,omitempty"`
	Source       Source                   `json:"source"`
	CreatedAt    time.Time                `json:"created_at"`
}

func (r *Record) Outcome() string {
	if r.Error != "" || r.Build == nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// NewRecord captures the result of one Recommend call.
func NewRecord(req engine.BuildRequirements, build *engine.Build, err error, source Source) *Record {
	rec := &Record{
		Purpose:      req.Purpose,
		Budget:       req.Budget,
		Requirements: req,
		Build:        build,
		Source:       source,
	}
	if build != nil {
		rec.TotalPrice = build.TotalPrice
	}
	if err != nil {
		rec.Error = err.Error()
		rec.Build = nil
		rec.TotalPrice = 0
	}
	return rec
}

type Filter struct {
	Purpose rules.Purpose
	Source  Source
	Limit   int
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	}
	return f.Limit
}

type PurposeStats struct {
	Purpose       rules.Purpose `json:"purpose"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	AvgTotalPrice float64       `json:"avg_total_price"`
}

type Stats struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	ByPurpose []PurposeStats `json:"by_purpose"`
}

// Store persists build records. Get returns nil, nil for an unknown id.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Stats(ctx context.Context) (*Stats, error)
}
