package normalize

import (
	"fmt"
	"strings"

	"github.com/angelcm/cpa-tracker/internal/models"
)

// APIRow is one Google-Ads-style report row. Cost arrives in micro-currency
// units (×1,000,000); everything else maps 1:1 onto DailyMetric.
type APIRow struct {
	Date        string  `json:"date"`
	AdGroupID   string  `json:"ad_group_id"`
	AdGroupName string  `json:"ad_group_name"`
	CostMicros  int64   `json:"cost_micros"`
	Conversions float64 `json:"conversions"`
}

const microsPerUnit = 1_000_000

// APIRows normalizes API report rows. Bad rows are excluded with a recorded
// diagnostic; they never fail the batch.
func APIRows(rows []APIRow) models.NormalizeResult {
	var res models.NormalizeResult
	out := newCollector()

	for i, r := range rows {
		id := strings.TrimSpace(r.AdGroupID)
		if id == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: missing ad group id", i))
			res.Summary.InvalidRows++
			continue
		}
		date, err := parseDate(r.Date)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i, err))
			res.Summary.InvalidRows++
			continue
		}
		if r.CostMicros < 0 || r.Conversions < 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: negative cost or conversions", i))
			res.Summary.InvalidRows++
			continue
		}

		spend := float64(r.CostMicros) / microsPerUnit
		out.add(models.DailyMetric{
			Date:              date,
			Platform:          models.PlatformGoogle,
			AdSetID:           id,
			AdSetName:         strings.TrimSpace(r.AdGroupName),
			Spend:             spend,
			Conversions:       r.Conversions,
			CostPerConversion: deriveCPA(spend, r.Conversions),
		})
		res.Summary.ValidRows++
	}

	out.finish(&res)
	return res
}
