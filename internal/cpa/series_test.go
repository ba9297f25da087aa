package cpa

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/angelcm/cpa-tracker/internal/models"
)

func TestChartSeriesFromUpload(t *testing.T) {
	records := []models.DailyMetric{
		record("adseta", day("2025-01-01"), 500, 10),
		record("adseta", day("2025-01-02"), 600, 12),
	}

	got := BuildChartSeries(records)
	want := []models.ChartSeriesPoint{
		{Date: "2025-01-01", Spend: 500, Conversions: 10, DailyCPA: 50, Rolling7DayAvg: 50},
		{Date: "2025-01-02", Spend: 600, Conversions: 12, DailyCPA: 50, Rolling7DayAvg: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestChartSeriesSumsAcrossAdSets(t *testing.T) {
	records := []models.DailyMetric{
		record("a", day("2025-01-01"), 100, 2),
		record("b", day("2025-01-01"), 50, 3),
	}

	got := BuildChartSeries(records)
	require.Len(t, got, 1)
	require.Equal(t, 150.0, got[0].Spend)
	require.Equal(t, 5.0, got[0].Conversions)
	require.Equal(t, 30.0, got[0].DailyCPA)
}

func TestChartSeriesWindowIsIndexBased(t *testing.T) {
	// a calendar gap must not consume window slots
	records := []models.DailyMetric{
		record("a", day("2025-01-01"), 70, 7),
		record("a", day("2025-01-05"), 20, 2),
		record("a", day("2025-01-20"), 30, 1),
	}

	got := BuildChartSeries(records)
	require.Len(t, got, 3)
	last := got[2]
	// all three points fit in the 7-slot window despite the 19-day span
	require.Equal(t, (70.0+20+30)/(7.0+2+1), last.Rolling7DayAvg)
}

func TestChartSeriesWindowCapsAtSevenPoints(t *testing.T) {
	var records []models.DailyMetric
	records = append(records, record("a", day("2025-01-01"), 1000, 1))
	records = append(records, consecutive("a", day("2025-01-02"), 7, 10, 1)...)

	got := BuildChartSeries(records)
	require.Len(t, got, 8)
	// the expensive first day has rolled out of the final window
	require.Equal(t, 10.0, got[7].Rolling7DayAvg)
}

func TestChartSeriesZeroConversionDay(t *testing.T) {
	got := BuildChartSeries([]models.DailyMetric{
		record("a", day("2025-01-01"), 40, 0),
	})
	require.Len(t, got, 1)
	require.Equal(t, 0.0, got[0].DailyCPA)
	require.Equal(t, 0.0, got[0].Rolling7DayAvg)
}

func TestChartSeriesEmptyInput(t *testing.T) {
	require.Empty(t, BuildChartSeries(nil))
}
