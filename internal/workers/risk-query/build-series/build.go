package buildseries

import (
	"sort"
	"strings"

	"lepto-risk-workers/internal/models"
)

// DefaultPalette colours comparison lines in country order.
var DefaultPalette = []string{
	"rgb(75, 192, 192)",
	"rgb(255, 99, 132)",
	"rgb(255, 205, 86)",
}

type seriesKey struct {
	country string
	year    int
}

// Build shapes a filtered subset for mode. Single modes yield one point per
// year; comparison modes pivot to one row per year keyed by the canonical
// names in countries. Within a (country, year) pair the first record wins.
func Build(subset []models.RiskRecord, mode models.QueryMode, countries []string) models.Series {
	if mode.IsMulti() {
		return models.Series{Kind: models.SeriesKindMulti, Rows: pivot(subset, countries)}
	}
	return models.Series{Kind: models.SeriesKindSingle, Points: points(subset)}
}

func points(subset []models.RiskRecord) []models.SeriesPoint {
	ordered := make([]models.RiskRecord, len(subset))
	copy(ordered, subset)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year < ordered[j].Year })

	out := []models.SeriesPoint{}
	seen := make(map[seriesKey]bool, len(ordered))
	for _, r := range ordered {
		key := seriesKey{strings.ToLower(r.Country), r.Year}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.SeriesPoint{Year: r.Year, RiskPercentage: copyFloat(r.RiskPercentage)})
	}
	return out
}

func pivot(subset []models.RiskRecord, countries []string) []models.SeriesRow {
	canonical := make(map[string]string, len(countries))
	for _, c := range countries {
		canonical[strings.ToLower(strings.TrimSpace(c))] = c
	}

	rows := make(map[int]map[string]float64)
	years := []int{}
	seen := make(map[seriesKey]bool, len(subset))
	for _, r := range subset {
		lower := strings.ToLower(strings.TrimSpace(r.Country))
		name, ok := canonical[lower]
		if !ok {
			name = r.Country
		}

		key := seriesKey{lower, r.Year}
		if seen[key] {
			continue
		}
		seen[key] = true

		values, ok := rows[r.Year]
		if !ok {
			values = make(map[string]float64)
			rows[r.Year] = values
			years = append(years, r.Year)
		}
		// records without a numeric value leave the key absent
		if r.RiskPercentage != nil {
			values[name] = *r.RiskPercentage
		}
	}

	sort.Ints(years)
	out := make([]models.SeriesRow, 0, len(years))
	for _, year := range years {
		out = append(out, models.SeriesRow{Year: year, Values: rows[year]})
	}
	return out
}

// Datasets projects a series onto chart lines, one per country, coloured
// from palette in country order. Missing values are nil so charts skip them.
func Datasets(series models.Series, countries []string, palette []string) []models.Dataset {
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	out := []models.Dataset{}
	if series.Kind != models.SeriesKindMulti {
		label := ""
		if len(countries) > 0 {
			label = countries[0]
		}
		data := make([]*float64, 0, len(series.Points))
		for _, p := range series.Points {
			data = append(data, copyFloat(p.RiskPercentage))
		}
		return append(out, models.Dataset{Label: label, Color: palette[0], Data: data})
	}

	for i, country := range countries {
		data := make([]*float64, 0, len(series.Rows))
		for _, row := range series.Rows {
			if v, ok := row.Value(country); ok {
				data = append(data, models.Float(v))
			} else {
				data = append(data, nil)
			}
		}
		out = append(out, models.Dataset{Label: country, Color: palette[i%len(palette)], Data: data})
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(*v)
}
