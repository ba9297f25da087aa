package integrity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelcm/cpa-tracker/internal/models"
)

func metric(id string, spend, conversions float64) models.DailyMetric {
	cpa := 0.0
	if conversions > 0 {
		cpa = spend / conversions
	}
	return models.DailyMetric{
		Date:              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Platform:          models.PlatformFacebook,
		AdSetID:           id,
		AdSetName:         id,
		Spend:             spend,
		Conversions:       conversions,
		CostPerConversion: cpa,
	}
}

func TestCleanBatchPasses(t *testing.T) {
	records := []models.DailyMetric{
		metric("a", 123.45, 3),
		metric("b", 87.12, 2),
		metric("c", 301.77, 9),
	}
	require.NoError(t, Check(records, DefaultConfig()))
	require.NoError(t, ValidateStructure(records))
}

func TestIdenticalCPARejected(t *testing.T) {
	records := make([]models.DailyMetric, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, metric(string(rune('a'+i)), 150, 3))
	}
	err := Check(records, DefaultConfig())
	var die *DataIntegrityError
	require.ErrorAs(t, err, &die)
	require.Equal(t, "identical-cpa", die.Heuristic)
}

func TestIdenticalFractionalCPARejected(t *testing.T) {
	// 50/3 is not float-representable; the check must still see equality
	records := make([]models.DailyMetric, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, metric(string(rune('a'+i)), 50, 3))
	}
	err := Check(records, DefaultConfig())
	var die *DataIntegrityError
	require.ErrorAs(t, err, &die)
	require.Equal(t, "identical-cpa", die.Heuristic)
}

func TestSingleRecordIdenticalCPAAllowed(t *testing.T) {
	require.NoError(t, Check([]models.DailyMetric{metric("solo", 150, 3)}, DefaultConfig()))
}

func TestRoundSpendRejected(t *testing.T) {
	records := []models.DailyMetric{
		metric("a", 200, 3),
		metric("b", 500, 7),
		metric("c", 123.45, 2),
	}
	err := Check(records, DefaultConfig())
	var die *DataIntegrityError
	require.ErrorAs(t, err, &die)
	require.Equal(t, "round-spend", die.Heuristic)
}

func TestRoundSpendThresholdConfigurable(t *testing.T) {
	records := []models.DailyMetric{
		metric("a", 200, 3),
		metric("b", 500, 7),
		metric("c", 123.45, 2),
	}
	cfg := DefaultConfig()
	cfg.RoundSpendFraction = 0.9
	require.NoError(t, Check(records, cfg))
}

func TestPlaceholderNamesRejected(t *testing.T) {
	for _, name := range []string{"test_campaign", "MOCK_set", "Fake_ads", "demo_thing"} {
		m := metric("real-id", 123.45, 3)
		m.AdSetName = name
		err := Check([]models.DailyMetric{m}, DefaultConfig())
		var die *DataIntegrityError
		require.ErrorAs(t, err, &die, name)
		require.Equal(t, "placeholder-name", die.Heuristic)
	}
}

func TestConversionsExceedingSpendRejected(t *testing.T) {
	err := Check([]models.DailyMetric{metric("a", 5, 12)}, DefaultConfig())
	var die *DataIntegrityError
	require.ErrorAs(t, err, &die)
	require.Equal(t, "conversions-exceed-spend", die.Heuristic)
}

func TestValidateStructure(t *testing.T) {
	good := metric("a", 10, 1)

	missingDate := good
	missingDate.Date = time.Time{}

	missingID := good
	missingID.AdSetID = ""

	negativeSpend := good
	negativeSpend.Spend = -1

	cases := []struct {
		name  string
		rec   models.DailyMetric
		field string
	}{
		{"missing date", missingDate, "date"},
		{"missing id", missingID, "ad_set_id"},
		{"negative spend", negativeSpend, "spend"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStructure([]models.DailyMetric{good, tc.rec})
			var mre *MalformedRecordError
			require.ErrorAs(t, err, &mre)
			require.Equal(t, 1, mre.Index)
			require.Equal(t, tc.field, mre.Field)
		})
	}
}
