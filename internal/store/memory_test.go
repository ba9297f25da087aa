package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelcm/cpa-tracker/internal/models"
)

func metric(id string, date time.Time, spend float64) models.DailyMetric {
	return models.DailyMetric{
		Date:        date,
		Platform:    models.PlatformGoogle,
		AdSetID:     id,
		AdSetName:   id,
		Spend:       spend,
		Conversions: 1,
	}
}

func TestUpsertReplacesSameKey(t *testing.T) {
	st := NewMemoryStore()
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	st.Upsert(metric("a", d, 100))
	// re-running an ingestion pass must not double-count
	st.Upsert(metric("a", d, 120))

	require.Equal(t, 1, st.Len())
	require.Equal(t, 120.0, st.All()[0].Spend)
}

func TestUpsertTruncatesDate(t *testing.T) {
	st := NewMemoryStore()
	st.Upsert(metric("a", time.Date(2025, 1, 1, 18, 45, 0, 0, time.UTC), 10))
	st.Upsert(metric("a", time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC), 20))
	require.Equal(t, 1, st.Len())
}

func TestQueryRange(t *testing.T) {
	st := NewMemoryStore()
	for i := 1; i <= 5; i++ {
		st.Upsert(metric("a", time.Date(2025, 1, i, 0, 0, 0, 0, time.UTC), float64(i)))
	}

	got := st.Query(
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
	)
	require.Len(t, got, 3)
	// deterministic date-ascending order
	require.Equal(t, 2.0, got[0].Spend)
	require.Equal(t, 4.0, got[2].Spend)

	require.Len(t, st.Query(time.Time{}, time.Time{}), 5)
}
