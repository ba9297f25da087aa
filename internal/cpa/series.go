package cpa

import (
	"sort"
	"time"

	"github.com/angelcm/cpa-tracker/internal/models"
)

// BuildChartSeries folds per-ad-set records into one aggregate daily series:
// spend and conversions summed across all ad sets per date, plus a trailing
// rolling average over the 7 most recent data points. The window here is
// index-based over the pre-aggregated series, not calendar-based like the
// per-ad-set engine; a missing day does not consume a window slot.
func BuildChartSeries(records []models.DailyMetric) []models.ChartSeriesPoint {
	type daily struct {
		spend       float64
		conversions float64
	}
	byDate := make(map[time.Time]*daily)
	for _, m := range records {
		d := dayUTC(m.Date)
		agg, ok := byDate[d]
		if !ok {
			agg = &daily{}
			byDate[d] = agg
		}
		agg.spend += m.Spend
		agg.conversions += m.Conversions
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]models.ChartSeriesPoint, 0, len(dates))
	for i, d := range dates {
		agg := byDate[d]

		start := i - (rollingWindowDays - 1)
		if start < 0 {
			start = 0
		}
		var winSpend, winConv float64
		for _, wd := range dates[start : i+1] {
			winSpend += byDate[wd].spend
			winConv += byDate[wd].conversions
		}

		p := models.ChartSeriesPoint{
			Date:        d.Format("2006-01-02"),
			Spend:       agg.spend,
			Conversions: agg.conversions,
		}
		if agg.conversions > 0 {
			p.DailyCPA = agg.spend / agg.conversions
		}
		if winConv > 0 {
			p.Rolling7DayAvg = winSpend / winConv
		}
		points = append(points, p)
	}
	return points
}
