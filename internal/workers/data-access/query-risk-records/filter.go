package queryriskrecords

import (
	"sort"
	"strings"

	"lepto-risk-workers/internal/models"
)

// Filter keeps the records whose country matches one of countries
// (case-insensitive) and, when year is set, whose year equals it. Input order
// is preserved. An empty result is a normal outcome.
func Filter(records []models.RiskRecord, countries []string, year *int) []models.RiskRecord {
	wanted := make(map[string]bool, len(countries))
	for _, c := range countries {
		wanted[strings.ToLower(strings.TrimSpace(c))] = true
	}

	out := []models.RiskRecord{}
	for _, r := range records {
		if !wanted[strings.ToLower(strings.TrimSpace(r.Country))] {
			continue
		}
		if year != nil && r.Year != *year {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DistinctCountries returns the distinct country names in records, sorted.
func DistinctCountries(records []models.RiskRecord) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		if r.Country == "" || seen[r.Country] {
			continue
		}
		seen[r.Country] = true
		out = append(out, r.Country)
	}
	sort.Strings(out)
	return out
}

// SortRecords orders records by year then country, keeping the relative
// order of equal keys.
func SortRecords(records []models.RiskRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].Country < records[j].Country
	})
}
