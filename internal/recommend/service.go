package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
	"github.com/MikeSquared-Agency/Rigger/internal/engine"
	"github.com/MikeSquared-Agency/Rigger/internal/events"
	"github.com/MikeSquared-Agency/Rigger/internal/metrics"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

var ErrInvalidComparison = errors.New("invalid comparison request")

type Options struct {
	// Timeout bounds one assembly. Zero means no limit beyond the caller's context.
	Timeout           time.Duration
	MinCompareBudgets int
	MaxCompareBudgets int
}

func DefaultOptions() Options {
	return Options{Timeout: 10 * time.Second, MinCompareBudgets: 2, MaxCompareBudgets: 5}
}

// Service runs recommendations and records what happened to each one: a build log
// entry, a result event and metrics. events and m may be nil.
type Service struct {
	assembler *engine.Assembler
	logs      buildlog.Store
	events    events.Client
	metrics   *metrics.Metrics
	opts      Options
	logger    *slog.Logger
}

func NewService(a *engine.Assembler, logs buildlog.Store, ev events.Client, m *metrics.Metrics, opts Options, logger *slog.Logger) *Service {
	if opts.MinCompareBudgets <= 0 {
		opts.MinCompareBudgets = DefaultOptions().MinCompareBudgets
	}
	if opts.MaxCompareBudgets < opts.MinCompareBudgets {
		opts.MaxCompareBudgets = max(DefaultOptions().MaxCompareBudgets, opts.MinCompareBudgets)
	}
	return &Service{
		assembler: a,
		logs:      logs,
		events:    ev,
		metrics:   m,
		opts:      opts,
		logger:    logger,
	}
}

type Result struct {
	BuildID uuid.UUID     `json:"build_id"`
	Build   *engine.Build `json:"build"`
}

func (s *Service) Recommend(ctx context.Context, req engine.BuildRequirements, source buildlog.Source) (*Result, error) {
	return s.RecommendWithID(ctx, "", req, source)
}

// RecommendWithID is Recommend with a caller-supplied correlation id for the result
// event. An empty requestID uses the build log id.
func (s *Service) RecommendWithID(ctx context.Context, requestID string, req engine.BuildRequirements, source buildlog.Source) (*Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	build, err := s.assembler.Recommend(ctx, req)
	elapsed := time.Since(start)

	rec := buildlog.NewRecord(req, build, err, source)
	s.observe(rec, err, elapsed)

	// The log write must not inherit an expired assembly deadline.
	if logErr := s.logs.Create(context.WithoutCancel(ctx), rec); logErr != nil {
		s.logger.Error("failed to record build", "purpose", req.Purpose, "error", logErr)
	}
	if requestID == "" && rec.ID != uuid.Nil {
		requestID = rec.ID.String()
	}
	s.publish(requestID, rec, err)

	if err != nil {
		s.logger.Info("build failed",
			"purpose", req.Purpose, "budget", req.Budget, "source", source, "error", err)
		return nil, err
	}
	s.logger.Info("build recommended",
		"build_id", rec.ID,
		"purpose", req.Purpose,
		"budget", req.Budget,
		"total_price", build.TotalPrice,
		"source", source,
		"duration_ms", elapsed.Milliseconds(),
	)
	return &Result{BuildID: rec.ID, Build: build}, nil
}

func (s *Service) observe(rec *buildlog.Record, err error, elapsed time.Duration) {
	s.metrics.ObserveBuild(string(rec.Purpose), rec.Outcome(), elapsed)
	var miss *engine.NoSuitableComponentError
	if errors.As(err, &miss) {
		s.metrics.ComponentMiss(string(miss.Category))
	}
}

func (s *Service) publish(requestID string, rec *buildlog.Record, err error) {
	if s.events == nil || requestID == "" {
		return
	}
	buildID := ""
	if rec.ID != uuid.Nil {
		buildID = rec.ID.String()
	}

	if err != nil {
		evt := events.BuildFailedEvent{
			RequestID: requestID,
			BuildID:   buildID,
			Purpose:   string(rec.Purpose),
			Budget:    rec.Budget,
			Error:     err.Error(),
			Source:    string(rec.Source),
			Timestamp: time.Now().UTC(),
		}
		var miss *engine.NoSuitableComponentError
		if errors.As(err, &miss) {
			evt.Category = string(miss.Category)
			evt.Details = miss.Constraints.Map()
		}
		if pubErr := s.events.Publish(events.SubjectBuildFailed(requestID), evt); pubErr != nil {
			s.logger.Warn("failed to publish build event", "request_id", requestID, "error", pubErr)
		}
		return
	}

	b := rec.Build
	prices := make(map[string]int, len(b.Components))
	for c, comp := range b.Components {
		prices[string(c)] = comp.Price
	}
	evt := events.BuildRecommendedEvent{
		RequestID:           requestID,
		BuildID:             buildID,
		Purpose:             string(rec.Purpose),
		Budget:              rec.Budget,
		TotalPrice:          b.TotalPrice,
		RemainingBudget:     b.RemainingBudget,
		AvgPerformanceScore: b.AvgPerformanceScore,
		Components:          prices,
		Warnings:            b.Bottlenecks.Warnings,
		Source:              string(rec.Source),
		Timestamp:           time.Now().UTC(),
	}
	if pubErr := s.events.Publish(events.SubjectBuildRecommended(requestID), evt); pubErr != nil {
		s.logger.Warn("failed to publish build event", "request_id", requestID, "error", pubErr)
	}
}

type BudgetFailure struct {
	Budget   int    `json:"budget"`
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

// CompareResult holds the comparison over the budgets that produced a build.
// Budgets and BuildIDs line up with Comparison.Builds.
type CompareResult struct {
	Purpose    rules.Purpose     `json:"purpose"`
	Budgets    []int             `json:"budgets"`
	BuildIDs   []uuid.UUID       `json:"build_ids"`
	Comparison engine.Comparison `json:"comparison"`
	Failures   []BudgetFailure   `json:"failures"`
}

// Compare assembles one build per budget concurrently. Results keep the input
// order. A budget that cannot be built is reported in Failures.
func (s *Service) Compare(ctx context.Context, purpose rules.Purpose, budgets []int, prefs engine.Preferences) (*CompareResult, error) {
	if n := len(budgets); n < s.opts.MinCompareBudgets || n > s.opts.MaxCompareBudgets {
		return nil, fmt.Errorf("%w: need %d to %d budgets, got %d",
			ErrInvalidComparison, s.opts.MinCompareBudgets, s.opts.MaxCompareBudgets, n)
	}
	for _, b := range budgets {
		if b <= 0 {
			return nil, fmt.Errorf("%w: budget must be positive, got %d", ErrInvalidComparison, b)
		}
	}
	if _, err := rules.AllocationFor(purpose); err != nil {
		if errors.Is(err, rules.ErrNoAllocation) {
			return nil, &engine.UnimplementedPurposeError{Purpose: purpose}
		}
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidRequirements, err)
	}

	type outcome struct {
		res *Result
		err error
	}
	outcomes := make([]outcome, len(budgets))

	var g errgroup.Group
	for i, budget := range budgets {
		i, budget := i, budget
		g.Go(func() error {
			req := engine.BuildRequirements{
				Purpose:      purpose,
				Budget:       budget,
				PreferBrands: prefs.PreferBrands,
				AvoidBrands:  prefs.AvoidBrands,
			}
			res, err := s.Recommend(ctx, req, buildlog.SourceCompare)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &CompareResult{
		Purpose:  purpose,
		Budgets:  []int{},
		BuildIDs: []uuid.UUID{},
		Failures: []BudgetFailure{},
	}
	var builds []*engine.Build
	for i, o := range outcomes {
		if o.err != nil {
			f := BudgetFailure{Budget: budgets[i], Error: o.err.Error()}
			var miss *engine.NoSuitableComponentError
			if errors.As(o.err, &miss) {
				f.Category = string(miss.Category)
			}
			result.Failures = append(result.Failures, f)
			continue
		}
		builds = append(builds, o.res.Build)
		result.Budgets = append(result.Budgets, budgets[i])
		result.BuildIDs = append(result.BuildIDs, o.res.BuildID)
	}
	result.Comparison = engine.Compare(builds)
	return result, nil
}
