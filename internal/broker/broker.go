package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
	"github.com/MikeSquared-Agency/Rigger/internal/engine"
	"github.com/MikeSquared-Agency/Rigger/internal/events"
	"github.com/MikeSquared-Agency/Rigger/internal/metrics"
	"github.com/MikeSquared-Agency/Rigger/internal/recommend"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

// Recommender is the part of recommend.Service the broker drives.
type Recommender interface {
	RecommendWithID(ctx context.Context, requestID string, req engine.BuildRequirements, source buildlog.Source) (*recommend.Result, error)
}

// Broker answers build requests arriving over NATS and counts catalog updates.
// Results are published by the recommender on rigger.build.<request_id>.*.
type Broker struct {
	events         events.Client
	recommender    Recommender
	metrics        *metrics.Metrics
	requestSubject string
	logger         *slog.Logger

	mu       sync.Mutex
	ctx      context.Context
	stopped  bool
	inflight sync.WaitGroup
}

func New(ev events.Client, r Recommender, m *metrics.Metrics, requestSubject string, logger *slog.Logger) *Broker {
	if requestSubject == "" {
		requestSubject = events.SubjectBuildRequest
	}
	return &Broker{
		events:         ev,
		recommender:    r,
		metrics:        m,
		requestSubject: requestSubject,
		logger:         logger,
		ctx:            context.Background(),
	}
}

// Start subscribes to request and catalog subjects. Handlers run under ctx.
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
	return b.SetupSubscriptions()
}

// Stop rejects new requests and waits for in-flight ones.
func (b *Broker) Stop() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
	b.inflight.Wait()
}

func (b *Broker) SetupSubscriptions() error {
	if b.events == nil {
		return nil
	}
	if err := b.events.QueueSubscribe(b.requestSubject, events.QueueGroup, func(_ string, data []byte) {
		b.handleBuildRequest(data)
	}); err != nil {
		return err
	}
	return b.events.Subscribe(events.SubjectCatalogUpdated, func(_ string, data []byte) {
		b.handleCatalogUpdated(data)
	})
}

func (b *Broker) begin() (context.Context, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, false
	}
	b.inflight.Add(1)
	return b.ctx, true
}

func (b *Broker) handleBuildRequest(data []byte) {
	ctx, ok := b.begin()
	if !ok {
		return
	}
	defer b.inflight.Done()

	var evt events.BuildRequestEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		b.logger.Warn("invalid build request event", "error", err)
		return
	}
	switch id := strings.TrimSpace(evt.RequestID); {
	case id == "":
		evt.RequestID = uuid.NewString()
	case !events.ValidRequestID(id):
		evt.RequestID = uuid.NewString()
		b.logger.Warn("build request id is not a valid subject token, replaced",
			"original_id", id, "request_id", evt.RequestID)
	default:
		evt.RequestID = id
	}

	req := engine.BuildRequirements{
		Purpose:      rules.Purpose(strings.TrimSpace(evt.Purpose)),
		Budget:       evt.Budget,
		PreferBrands: evt.PreferBrands,
		AvoidBrands:  evt.AvoidBrands,
	}
	b.logger.Info("build request received", "request_id", evt.RequestID, "purpose", req.Purpose, "budget", req.Budget)

	// Failures are published and logged by the recommender.
	_, _ = b.recommender.RecommendWithID(ctx, evt.RequestID, req, buildlog.SourceNATS)
}

func (b *Broker) handleCatalogUpdated(data []byte) {
	var evt events.CatalogUpdatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		b.logger.Warn("invalid catalog update event", "error", err)
		return
	}
	b.metrics.CatalogEvent(evt.Kind)
	b.logger.Debug("catalog updated", "kind", evt.Kind, "category", evt.Category, "count", evt.Count)
}
