package cpa

import "github.com/angelcm/cpa-tracker/internal/models"

// Thresholds is the alert bucketing policy, independent of the trend band.
// Percent values; ImprovementPct is negative.
type Thresholds struct {
	CriticalPct    float64
	WarningPct     float64
	ImprovementPct float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{CriticalPct: 25, WarningPct: 15, ImprovementPct: -10}
}

// Classify partitions results into severity buckets. A result lands in at
// most one bucket; results that neither rose past the warning threshold nor
// fell to the improvement threshold are not surfaced at all.
func Classify(results []models.RollingResult, th Thresholds) models.AlertBuckets {
	var out models.AlertBuckets
	for _, r := range results {
		switch {
		case r.ChangePercent > th.CriticalPct:
			out.Critical = append(out.Critical, r)
		case r.ChangePercent > th.WarningPct:
			out.Warning = append(out.Warning, r)
		case r.ChangePercent <= th.ImprovementPct:
			out.Improvements = append(out.Improvements, r)
		}
	}
	return out
}
