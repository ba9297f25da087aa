package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelcm/cpa-tracker/internal/models"
)

var moneyCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// parseMoney parses a numeric field after stripping currency symbols and
// thousands separators. Negative or non-numeric values are errors.
func parseMoney(s string) (decimal.Decimal, error) {
	cleaned := moneyCleaner.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative value: %q", s)
	}
	return d, nil
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// parseDate accepts ISO and US month-first slash dates. Ambiguous slash
// separators are read month-first.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return dayUTC(d), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// collector accumulates DailyMetric output, summing spend and conversions
// when two input rows resolve to the same (platform, adSetID, date) key and
// re-deriving cost per conversion after each merge.
type collector struct {
	data  []models.DailyMetric
	index map[models.MetricKey]int
}

func newCollector() *collector {
	return &collector{index: make(map[models.MetricKey]int)}
}

func (c *collector) add(m models.DailyMetric) {
	k := m.Key()
	if i, ok := c.index[k]; ok {
		merged := c.data[i]
		merged.Spend += m.Spend
		merged.Conversions += m.Conversions
		merged.CostPerConversion = deriveCPA(merged.Spend, merged.Conversions)
		c.data[i] = merged
		return
	}
	c.index[k] = len(c.data)
	c.data = append(c.data, m)
}

func deriveCPA(spend, conversions float64) float64 {
	if conversions <= 0 {
		return 0
	}
	return spend / conversions
}

// Resummarize recomputes totals, date span and the success flag from Data.
// Callers that filter the records after normalization use it to keep the
// envelope consistent.
func Resummarize(res *models.NormalizeResult) {
	res.Summary.TotalSpend = 0
	res.Summary.TotalConversions = 0
	res.Summary.DateFrom = ""
	res.Summary.DateTo = ""
	c := &collector{data: res.Data}
	c.finish(res)
}

// finish fills the result envelope from the collected records.
func (c *collector) finish(res *models.NormalizeResult) {
	res.Data = c.data
	res.Success = len(c.data) > 0
	var minDate, maxDate time.Time
	for _, m := range c.data {
		res.Summary.TotalSpend += m.Spend
		res.Summary.TotalConversions += m.Conversions
		if minDate.IsZero() || m.Date.Before(minDate) {
			minDate = m.Date
		}
		if maxDate.IsZero() || m.Date.After(maxDate) {
			maxDate = m.Date
		}
	}
	if !minDate.IsZero() {
		res.Summary.DateFrom = minDate.Format("2006-01-02")
		res.Summary.DateTo = maxDate.Format("2006-01-02")
	}
}
