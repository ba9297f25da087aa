package normalize

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/angelcm/cpa-tracker/internal/models"
)

// cpaTolerance is the absolute discrepancy allowed between an upstream
// "cost per result" figure and the derived spend/conversions before a
// reconciliation warning is recorded.
var cpaTolerance = decimal.NewFromFloat(0.01)

// CSVNormalizer converts Facebook export rows into canonical DailyMetric
// records. Now is injectable so the "yesterday" date fallback is testable.
type CSVNormalizer struct {
	Aliases AliasTable
	Now     func() time.Time
}

func NewCSVNormalizer(aliases AliasTable) *CSVNormalizer {
	return &CSVNormalizer{Aliases: aliases, Now: time.Now}
}

// Parse reads a whole CSV export. A file whose header line cannot be read is
// a failed parse; everything after that is handled row by row.
func (n *CSVNormalizer) Parse(r io.Reader) models.NormalizeResult {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return models.NormalizeResult{
			Errors: []string{fmt.Sprintf("unreadable csv: %v", err)},
		}
	}
	return n.ParseRows(rows)
}

// ParseRows normalizes pre-split key-value rows. Per-row problems are
// recovered locally: the row is skipped or defaulted and a diagnostic is
// recorded, so one bad line never invalidates the file.
func (n *CSVNormalizer) ParseRows(rows []map[string]string) models.NormalizeResult {
	var res models.NormalizeResult
	out := newCollector()
	ids := newIDAssigner()
	yesterday := dayUTC(n.Now().AddDate(0, 0, -1))

	for i, row := range rows {
		// header occupies line 1 of the file
		line := i + 2

		name, _ := pick(row, n.Aliases.AdSetName)
		if name == "" {
			res.Summary.SkippedRows++
			continue
		}
		if delivery, _ := pick(row, n.Aliases.Delivery); isInactive(delivery) {
			res.Summary.SkippedRows++
			continue
		}

		spendRaw, ok := pick(row, n.Aliases.Spend)
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: no spend column found", line))
			res.Summary.InvalidRows++
			continue
		}
		spend, err := parseMoney(spendRaw)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: bad spend: %v", line, err))
			res.Summary.InvalidRows++
			continue
		}
		if spend.IsZero() {
			// non-delivering ad set, not a data error
			res.Summary.SkippedRows++
			continue
		}

		conversions := decimal.Zero
		if raw, ok := pick(row, n.Aliases.Results); ok && raw != "" {
			conversions, err = parseMoney(raw)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("line %d: bad results: %v", line, err))
				res.Summary.InvalidRows++
				continue
			}
		}

		derived := decimal.Zero
		if conversions.IsPositive() {
			derived = spend.Div(conversions)
		}
		if raw, ok := pick(row, n.Aliases.CostPerResult); ok && raw != "" && conversions.IsPositive() {
			supplied, err := parseMoney(raw)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("line %d: unreadable cost per result ignored: %v", line, err))
			} else if supplied.Sub(derived).Abs().GreaterThan(cpaTolerance) {
				res.Errors = append(res.Errors, fmt.Sprintf(
					"line %d: cost per result %s disagrees with derived %s; derived kept",
					line, supplied.StringFixed(2), derived.StringFixed(2)))
			}
		}

		date := n.extractDate(row, line, yesterday, &res.Errors)

		out.add(models.DailyMetric{
			Date:              date,
			Platform:          models.PlatformFacebook,
			AdSetID:           ids.idFor(name),
			AdSetName:         name,
			Spend:             spend.InexactFloat64(),
			Conversions:       conversions.InexactFloat64(),
			CostPerConversion: deriveCPA(spend.InexactFloat64(), conversions.InexactFloat64()),
		})
		res.Summary.ValidRows++
	}

	out.finish(&res)
	return res
}

// extractDate prefers the reporting-start column, falls back to reporting
// end, and finally to yesterday with a recorded warning. Unparseable dates
// also fall back to yesterday rather than failing the row.
func (n *CSVNormalizer) extractDate(row map[string]string, line int, yesterday time.Time, errs *[]string) time.Time {
	raw, _ := pick(row, n.Aliases.ReportingStart)
	if raw == "" {
		raw, _ = pick(row, n.Aliases.ReportingEnd)
	}
	if raw == "" {
		*errs = append(*errs, fmt.Sprintf("line %d: no reporting date; assuming yesterday", line))
		return yesterday
	}
	d, err := parseDate(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("line %d: %v; assuming yesterday", line, err))
		return yesterday
	}
	return d
}

func isInactive(delivery string) bool {
	switch strings.ToLower(strings.TrimSpace(delivery)) {
	case "inactive", "not_delivering", "not delivering", "off":
		return true
	}
	return false
}

// idAssigner derives stable ad set ids from display names. The ordinal is
// the per-slug occurrence index within the file, so distinct names that
// slugify identically stay distinct and re-parsing the same export always
// yields the same ids.
type idAssigner struct {
	byName map[string]string
	bySlug map[string]int
}

func newIDAssigner() *idAssigner {
	return &idAssigner{
		byName: make(map[string]string),
		bySlug: make(map[string]int),
	}
}

func (a *idAssigner) idFor(name string) string {
	if id, ok := a.byName[name]; ok {
		return id
	}
	slug := slugify(name)
	a.bySlug[slug]++
	id := fmt.Sprintf("%s-%d", slug, a.bySlug[slug])
	a.byName[name] = id
	return id
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
