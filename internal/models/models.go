package models

import "time"

type Platform string

const (
	PlatformGoogle   Platform = "google"
	PlatformFacebook Platform = "facebook"
)

// DailyMetric is the canonical unit of ad performance: one ad set, one
// platform, one calendar day. Records are immutable facts keyed by
// (Platform, AdSetID, Date); CostPerConversion is always derived from
// Spend/Conversions, never taken from upstream.
type DailyMetric struct {
	Date              time.Time `json:"date"`
	Platform          Platform  `json:"platform"`
	AdSetID           string    `json:"ad_set_id"`
	AdSetName         string    `json:"ad_set_name"`
	Spend             float64   `json:"spend"`
	Conversions       float64   `json:"conversions"`
	CostPerConversion float64   `json:"cost_per_conversion"`
}

// MetricKey identifies a DailyMetric. Date must be truncated to midnight UTC.
type MetricKey struct {
	Platform Platform
	AdSetID  string
	Date     time.Time
}

func (m DailyMetric) Key() MetricKey {
	return MetricKey{Platform: m.Platform, AdSetID: m.AdSetID, Date: m.Date}
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

// RollingResult is the per-ad-set output of the rolling CPA engine for a
// target date. DataPoints is the number of days that contributed to the
// window so callers can tell a confident 7-point average from a thin one.
type RollingResult struct {
	Platform             Platform `json:"platform"`
	AdSetID              string   `json:"ad_set_id"`
	AdSetName            string   `json:"ad_set_name"`
	CurrentDayCPA        float64  `json:"current_day_cpa"`
	Rolling7DayAvgCPA    float64  `json:"rolling_7_day_avg_cpa"`
	ChangeFromRollingAvg float64  `json:"change_from_rolling_avg"`
	ChangePercent        float64  `json:"change_percent"`
	Trend                Trend    `json:"trend"`
	DataPoints           int      `json:"data_points"`
	Warning              string   `json:"warning,omitempty"`
}

// ChartSeriesPoint is one day of the aggregate (all ad sets summed) series.
type ChartSeriesPoint struct {
	Date           string  `json:"date"`
	Spend          float64 `json:"spend"`
	Conversions    float64 `json:"conversions"`
	DailyCPA       float64 `json:"daily_cpa"`
	Rolling7DayAvg float64 `json:"rolling_7_day_avg"`
}

// AlertBuckets partitions rolling results by severity. A result appears in
// at most one bucket; unremarkable results appear in none.
type AlertBuckets struct {
	Critical     []RollingResult `json:"critical"`
	Warning      []RollingResult `json:"warning"`
	Improvements []RollingResult `json:"improvements"`
}

type NormalizeSummary struct {
	TotalSpend       float64 `json:"total_spend"`
	TotalConversions float64 `json:"total_conversions"`
	ValidRows        int     `json:"valid_rows"`
	InvalidRows      int     `json:"invalid_rows"`
	SkippedRows      int     `json:"skipped_rows"`
	DateFrom         string  `json:"date_from,omitempty"`
	DateTo           string  `json:"date_to,omitempty"`
}

// NormalizeResult is the envelope returned by both normalizers. Errors holds
// recoverable per-row diagnostics (the caller displays them alongside any
// partial success). Success is true iff at least one row produced data.
type NormalizeResult struct {
	Success bool             `json:"success"`
	Data    []DailyMetric    `json:"data"`
	Errors  []string         `json:"errors"`
	Summary NormalizeSummary `json:"summary"`
}

type DaySummary struct {
	Date             string  `json:"date"`
	AdSets           int     `json:"ad_sets"`
	TotalSpend       float64 `json:"total_spend"`
	TotalConversions float64 `json:"total_conversions"`
	CPA              float64 `json:"cpa"`
}

// WarehouseRow matches the layout owned by the external warehouse: one row
// per (date, platform, ad_set_id).
type WarehouseRow struct {
	Date              string  `json:"date"`
	Platform          string  `json:"platform"`
	AdSetID           string  `json:"ad_set_id"`
	AdSetName         string  `json:"ad_set_name"`
	TotalSpend        float64 `json:"total_spend"`
	Conversions       float64 `json:"conversions"`
	CostPerConversion float64 `json:"cost_per_conversion"`
	CPAChangePercent  float64 `json:"cpa_change_percent"`
}
