// Package integrity rejects record sets that look synthetic or structurally
// broken before they reach any aggregate the business acts on.
package integrity

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/angelcm/cpa-tracker/internal/models"
)

// DataIntegrityError means the heuristics believe the batch is fabricated.
// Fatal to the batch; nothing downstream may aggregate it.
type DataIntegrityError struct {
	Heuristic string
	Detail    string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity check failed (%s): %s", e.Heuristic, e.Detail)
}

// MalformedRecordError means a record is structurally invalid.
type MalformedRecordError struct {
	Index  int
	Field  string
	Detail string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %d: %s: %s", e.Index, e.Field, e.Detail)
}

// Config tunes the heuristics. Thresholds are configurable because round
// spend numbers can false-positive on legitimate data.
type Config struct {
	// RoundSpendFraction is the share of records allowed to carry a spend
	// that is an exact multiple of RoundSpendStep before the batch is
	// considered synthetic.
	RoundSpendFraction  float64
	RoundSpendStep      float64
	PlaceholderPrefixes []string
}

func DefaultConfig() Config {
	return Config{
		RoundSpendFraction:  0.5,
		RoundSpendStep:      100,
		PlaceholderPrefixes: []string{"test_", "mock_", "fake_", "demo_"},
	}
}

// Check runs the synthetic-data heuristics. Any single match rejects the
// whole batch with a DataIntegrityError naming the heuristic.
func Check(records []models.DailyMetric, cfg Config) error {
	if len(records) == 0 {
		return nil
	}

	round := 0
	cpas := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Spend > cfg.RoundSpendStep && math.Mod(r.Spend, cfg.RoundSpendStep) == 0 {
			round++
		}
		cpas = append(cpas, r.CostPerConversion)

		for _, prefix := range cfg.PlaceholderPrefixes {
			if hasPrefixFold(r.AdSetID, prefix) || hasPrefixFold(r.AdSetName, prefix) {
				return &DataIntegrityError{
					Heuristic: "placeholder-name",
					Detail:    fmt.Sprintf("ad set %q matches placeholder prefix %q", r.AdSetName, prefix),
				}
			}
		}
		if r.Conversions > r.Spend {
			return &DataIntegrityError{
				Heuristic: "conversions-exceed-spend",
				Detail: fmt.Sprintf("ad set %q reports %.2f conversions on %.2f spend",
					r.AdSetName, r.Conversions, r.Spend),
			}
		}
	}

	if float64(round)/float64(len(records)) > cfg.RoundSpendFraction {
		return &DataIntegrityError{
			Heuristic: "round-spend",
			Detail: fmt.Sprintf("%d of %d records have spend on exact %.0f boundaries",
				round, len(records), cfg.RoundSpendStep),
		}
	}
	if len(records) > 1 {
		// min == max is an exact-equality scan; a variance test would drown
		// shared values like 50/3 in float rounding and let them through
		lo, loErr := stats.Min(cpas)
		hi, hiErr := stats.Max(cpas)
		if loErr == nil && hiErr == nil && lo == hi {
			return &DataIntegrityError{
				Heuristic: "identical-cpa",
				Detail:    fmt.Sprintf("all %d records share cost per conversion %.4f", len(records), cpas[0]),
			}
		}
	}
	return nil
}

// ValidateStructure checks completeness of every record. The first violation
// fails the batch: downstream aggregation cannot tolerate broken records.
func ValidateStructure(records []models.DailyMetric) error {
	for i, r := range records {
		switch {
		case r.Date.IsZero():
			return &MalformedRecordError{Index: i, Field: "date", Detail: "missing"}
		case r.Platform != models.PlatformGoogle && r.Platform != models.PlatformFacebook:
			return &MalformedRecordError{Index: i, Field: "platform", Detail: fmt.Sprintf("unknown %q", r.Platform)}
		case r.AdSetID == "":
			return &MalformedRecordError{Index: i, Field: "ad_set_id", Detail: "missing"}
		case math.IsNaN(r.Spend) || math.IsInf(r.Spend, 0) || r.Spend < 0:
			return &MalformedRecordError{Index: i, Field: "spend", Detail: fmt.Sprintf("invalid %v", r.Spend)}
		case math.IsNaN(r.Conversions) || math.IsInf(r.Conversions, 0) || r.Conversions < 0:
			return &MalformedRecordError{Index: i, Field: "conversions", Detail: fmt.Sprintf("invalid %v", r.Conversions)}
		}
	}
	return nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
