// Package cpa holds the analytical core: rolling CPA computation, trend
// classification, alert bucketing and chart series aggregation. Everything
// here is a pure function over its inputs.
package cpa

import (
	"fmt"
	"sort"
	"time"

	"github.com/angelcm/cpa-tracker/internal/models"
)

const (
	// rollingWindowDays is the trailing calendar window, target day included.
	rollingWindowDays = 7
	// stableBandPct is the fixed noise band: absolute percent changes below
	// it are labeled stable regardless of sign.
	stableBandPct = 5.0
)

// EmptyInputError means a computation was asked for with no data at all.
type EmptyInputError struct {
	Op string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no records to compute over", e.Op)
}

// ComputeRolling computes one RollingResult per distinct ad set present in
// history, against target date. Output is sorted by CurrentDayCPA descending
// so the worst performers surface first. An ad set with no data inside the
// window is skipped; an entirely empty history is an EmptyInputError.
func ComputeRolling(history []models.DailyMetric, target time.Time) ([]models.RollingResult, error) {
	if len(history) == 0 {
		return nil, &EmptyInputError{Op: "rolling cpa"}
	}

	day := dayUTC(target)
	groups := make(map[string][]models.DailyMetric)
	for _, m := range history {
		k := string(m.Platform) + "|" + m.AdSetID
		groups[k] = append(groups[k], m)
	}

	results := make([]models.RollingResult, 0, len(groups))
	for _, records := range groups {
		if r, ok := rollingForAdSet(records, day); ok {
			results = append(results, r)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CurrentDayCPA != results[j].CurrentDayCPA {
			return results[i].CurrentDayCPA > results[j].CurrentDayCPA
		}
		return results[i].AdSetID < results[j].AdSetID
	})
	return results, nil
}

func rollingForAdSet(records []models.DailyMetric, day time.Time) (models.RollingResult, bool) {
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	windowStart := day.AddDate(0, 0, -(rollingWindowDays - 1))
	var window []models.DailyMetric
	var current *models.DailyMetric
	for i := range records {
		d := dayUTC(records[i].Date)
		if !d.Before(windowStart) && !d.After(day) {
			window = append(window, records[i])
		}
		if d.Equal(day) {
			current = &records[i]
		}
	}
	if len(window) == 0 {
		return models.RollingResult{}, false
	}

	var warning string
	if current == nil {
		// degraded path: represent the day with the newest record we have
		current = &records[len(records)-1]
		warning = fmt.Sprintf("no data for %s; using most recent day %s",
			day.Format("2006-01-02"), dayUTC(current.Date).Format("2006-01-02"))
	}

	var spend, conversions float64
	for _, w := range window {
		spend += w.Spend
		conversions += w.Conversions
	}

	res := models.RollingResult{
		Platform:      current.Platform,
		AdSetID:       current.AdSetID,
		AdSetName:     current.AdSetName,
		CurrentDayCPA: current.CostPerConversion,
		DataPoints:    len(window),
		Warning:       warning,
	}
	if conversions == 0 {
		// infinite degradation from a zero baseline, never spend/0
		res.Rolling7DayAvgCPA = 0
		res.ChangeFromRollingAvg = res.CurrentDayCPA
		res.ChangePercent = 100
		res.Trend = models.TrendWorsening
		return res, true
	}

	res.Rolling7DayAvgCPA = spend / conversions
	res.ChangeFromRollingAvg = res.CurrentDayCPA - res.Rolling7DayAvgCPA
	res.ChangePercent = res.ChangeFromRollingAvg / res.Rolling7DayAvgCPA * 100
	res.Trend = classifyTrend(res.ChangePercent)
	return res, true
}

func classifyTrend(changePercent float64) models.Trend {
	switch {
	case changePercent < stableBandPct && changePercent > -stableBandPct:
		return models.TrendStable
	case changePercent > 0:
		return models.TrendWorsening
	default:
		return models.TrendImproving
	}
}

// DailySummary totals the records for one calendar day across all ad sets.
func DailySummary(records []models.DailyMetric, date time.Time) (models.DaySummary, error) {
	day := dayUTC(date)
	sum := models.DaySummary{Date: day.Format("2006-01-02")}
	for _, m := range records {
		if !dayUTC(m.Date).Equal(day) {
			continue
		}
		sum.AdSets++
		sum.TotalSpend += m.Spend
		sum.TotalConversions += m.Conversions
	}
	if sum.AdSets == 0 {
		return models.DaySummary{}, &EmptyInputError{Op: "daily summary for " + sum.Date}
	}
	if sum.TotalConversions > 0 {
		sum.CPA = sum.TotalSpend / sum.TotalConversions
	}
	return sum, nil
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
