// Package metrics answers the dashboard's read queries over the store.
package metrics

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/angelcm/cpa-tracker/internal/cpa"
	"github.com/angelcm/cpa-tracker/internal/models"
	"github.com/angelcm/cpa-tracker/internal/store"
)

type Service struct {
	st *store.MemoryStore
	th cpa.Thresholds
}

func NewService(st *store.MemoryStore, th cpa.Thresholds) *Service {
	return &Service{st: st, th: th}
}

// Rolling computes per-ad-set rolling results for the given target date over
// everything currently stored, worst CPA first.
func (s *Service) Rolling(date time.Time) ([]models.RollingResult, error) {
	return cpa.ComputeRolling(s.st.All(), date)
}

// Alerts buckets the rolling results with the configured thresholds.
func (s *Service) Alerts(date time.Time) (models.AlertBuckets, error) {
	results, err := cpa.ComputeRolling(s.st.All(), date)
	if err != nil {
		return models.AlertBuckets{}, err
	}
	return cpa.Classify(results, s.th), nil
}

// Chart builds the aggregate daily series, optionally bounded by
// from/to query params and paginated with limit/offset.
func (s *Service) Chart(v url.Values) ([]models.ChartSeriesPoint, error) {
	from, err := dateParam(v, "from")
	if err != nil {
		return nil, err
	}
	to, err := dateParam(v, "to")
	if err != nil {
		return nil, err
	}
	limit := atoiDef(v.Get("limit"), 0)
	offset := atoiDef(v.Get("offset"), 0)

	points := cpa.BuildChartSeries(s.st.Query(from, to))
	limit, offset = clampLimitOffset(limit, offset, len(points))
	return paginate(points, limit, offset), nil
}

func (s *Service) Summary(date time.Time) (models.DaySummary, error) {
	return cpa.DailySummary(s.st.All(), date)
}

func dateParam(v url.Values, key string) (time.Time, error) {
	raw := v.Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New(key + " must be YYYY-MM-DD")
	}
	return t, nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // tope sano
	if offset > n {
		offset = n
	}
	return limit, offset
}
