package normalize

import "strings"

// AliasTable maps each canonical field to the ordered list of column headers
// accepted for it. Export-format versions disagree on capitalization and
// currency suffixes, so the first alias present in a row wins.
type AliasTable struct {
	AdSetName      []string
	Spend          []string
	Results        []string
	CostPerResult  []string
	ReportingStart []string
	ReportingEnd   []string
	Delivery       []string
}

// DefaultAliases covers the Facebook export dialects seen in production.
func DefaultAliases() AliasTable {
	return AliasTable{
		AdSetName: []string{"Ad Set Name", "Ad set name", "Adset name"},
		Spend: []string{
			"Amount Spent", "Amount spent",
			"Amount spent (AUD)", "Amount spent (USD)", "Amount Spent (AUD)",
		},
		Results:       []string{"Results", "Conversions", "Purchases"},
		CostPerResult: []string{"Cost per Result", "Cost per result", "Cost per Results"},
		ReportingStart: []string{
			"Reporting starts", "Reporting Starts", "Reporting start", "Reporting Start",
		},
		ReportingEnd: []string{
			"Reporting ends", "Reporting Ends", "Reporting end", "Reporting End",
		},
		Delivery: []string{"Delivery", "Ad Set Delivery", "Ad set delivery", "Delivery status"},
	}
}

// pick returns the value of the first alias present in the row. A header that
// exists with an empty value still counts as present.
func pick(row map[string]string, aliases []string) (string, bool) {
	for _, a := range aliases {
		if v, ok := row[a]; ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
