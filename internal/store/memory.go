package store

import (
	"sort"
	"sync"
	"time"

	"github.com/angelcm/cpa-tracker/internal/models"
)

// MemoryStore holds canonical DailyMetric facts keyed by
// (platform, adSetID, date). Duplicate rows inside a single batch are merged
// by the normalizer before they get here, so an upsert for an existing key
// replaces the fact (re-running an ingestion pass must not double-count).
type MemoryStore struct {
	mu      sync.RWMutex
	metrics map[models.MetricKey]models.DailyMetric
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{metrics: make(map[models.MetricKey]models.DailyMetric)}
}

func (s *MemoryStore) Upsert(m models.DailyMetric) {
	m.Date = day(m.Date)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[m.Key()] = m
}

func (s *MemoryStore) UpsertAll(ms []models.DailyMetric) {
	for _, m := range ms {
		s.Upsert(m)
	}
}

func (s *MemoryStore) All() []models.DailyMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DailyMetric, 0, len(s.metrics))
	for _, v := range s.metrics {
		out = append(out, v)
	}
	sortMetrics(out)
	return out
}

// Query returns metrics with date in [from, to]. A zero from or to leaves
// that bound open.
func (s *MemoryStore) Query(from, to time.Time) []models.DailyMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DailyMetric
	for _, v := range s.metrics {
		if !from.IsZero() && v.Date.Before(day(from)) {
			continue
		}
		if !to.IsZero() && v.Date.After(day(to)) {
			continue
		}
		out = append(out, v)
	}
	sortMetrics(out)
	return out
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.metrics)
}

// deterministic order regardless of map iteration
func sortMetrics(ms []models.DailyMetric) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].Date.Equal(ms[j].Date) {
			return ms[i].Date.Before(ms[j].Date)
		}
		if ms[i].Platform != ms[j].Platform {
			return ms[i].Platform < ms[j].Platform
		}
		return ms[i].AdSetID < ms[j].AdSetID
	})
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
