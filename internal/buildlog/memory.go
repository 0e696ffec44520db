package buildlog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

// MemoryStore keeps records in process. Used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = uuid.New()
	rec.CreatedAt = s.now().UTC()
	stored := *rec
	s.records = append(s.records, &stored)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

// List returns newest first.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if filter.Purpose != "" && r.Purpose != filter.Purpose {
			continue
		}
		if filter.Source != "" && r.Source != filter.Source {
			continue
		}
		cp := *r
		out = append(out, &cp)
		if len(out) == filter.limit() {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPurpose := map[rules.Purpose]*PurposeStats{}
	priceSums := map[rules.Purpose]int{}
	for _, r := range s.records {
		ps, ok := byPurpose[r.Purpose]
		if !ok {
			ps = &PurposeStats{Purpose: r.Purpose}
			byPurpose[r.Purpose] = ps
		}
		if r.Outcome() == OutcomeSuccess {
			ps.Succeeded++
			priceSums[r.Purpose] += r.TotalPrice
		} else {
			ps.Failed++
		}
	}

	stats := &Stats{ByPurpose: []PurposeStats{}}
	purposes := make([]string, 0, len(byPurpose))
	for p := range byPurpose {
		purposes = append(purposes, string(p))
	}
	sort.Strings(purposes)
	for _, p := range purposes {
		ps := byPurpose[rules.Purpose(p)]
		if ps.Succeeded > 0 {
			ps.AvgTotalPrice = float64(priceSums[ps.Purpose]) / float64(ps.Succeeded)
		}
		stats.add(*ps)
	}
	return stats, nil
}
