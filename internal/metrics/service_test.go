package metrics

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelcm/cpa-tracker/internal/cpa"
	"github.com/angelcm/cpa-tracker/internal/models"
	"github.com/angelcm/cpa-tracker/internal/store"
)

func seededService(t *testing.T) *Service {
	t.Helper()
	st := store.NewMemoryStore()
	for i := 0; i < 10; i++ {
		d := time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC)
		st.Upsert(models.DailyMetric{
			Date: d, Platform: models.PlatformFacebook,
			AdSetID: "set-1", AdSetName: "Set One",
			Spend: 100, Conversions: 10, CostPerConversion: 10,
		})
	}
	return NewService(st, cpa.DefaultThresholds())
}

func TestRollingThroughService(t *testing.T) {
	svc := seededService(t)
	rows, err := svc.Rolling(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 7, rows[0].DataPoints)
	require.Equal(t, models.TrendStable, rows[0].Trend)
}

func TestAlertsThroughService(t *testing.T) {
	svc := seededService(t)
	buckets, err := svc.Alerts(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Empty(t, buckets.Critical)
	require.Empty(t, buckets.Warning)
	require.Empty(t, buckets.Improvements)
}

func TestChartBoundsAndPagination(t *testing.T) {
	svc := seededService(t)

	points, err := svc.Chart(url.Values{"from": {"2025-01-03"}, "to": {"2025-01-05"}})
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Equal(t, "2025-01-03", points[0].Date)

	points, err = svc.Chart(url.Values{"limit": {"2"}, "offset": {"1"}})
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, "2025-01-02", points[0].Date)

	_, err = svc.Chart(url.Values{"from": {"nope"}})
	require.Error(t, err)
}

func TestSummaryThroughService(t *testing.T) {
	svc := seededService(t)
	sum, err := svc.Summary(time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 100.0, sum.TotalSpend)
	require.Equal(t, 10.0, sum.CPA)
}
