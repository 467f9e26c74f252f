package surveillance

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"lepto-risk-workers/internal/models"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// Rate colour scale bounds, the observed minimum and maximum rates.
const (
	rateLower = 0.0206145
	rateUpper = 7.76796
)

// NoRateColor marks countries with no numeric rate.
const NoRateColor = "rgb(128, 128, 128)"

// SortKeys are the table columns that can be sorted on.
var SortKeys = []string{
	"year", "country_code", "country_name", "t2m", "d2m", "tp",
	"leptospirosis_rate", "temperature_celsius", "dew_point_celsius", "relative_humidity",
}

// TableQuery selects and orders dashboard table rows.
type TableQuery struct {
	Search     string
	SortKey    string
	Descending bool
}

// Table keeps the records whose country name contains Search (case
// insensitive) and orders them by SortKey. An empty SortKey keeps the
// stored order. Numbers compare numerically, text case-insensitively, and
// rows without a value sort last in either direction.
func Table(records []models.SurveillanceRecord, q TableQuery) ([]models.SurveillanceRecord, error) {
	var key func(r *models.SurveillanceRecord) (float64, string, bool)
	if q.SortKey != "" {
		var ok bool
		if key, ok = sortKey(q.SortKey); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSortKey, q.SortKey)
		}
	}

	search := strings.ToLower(q.Search)
	out := make([]models.SurveillanceRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.CountryName), search) {
			out = append(out, r)
		}
	}
	if key == nil {
		return out, nil
	}

	sort.SliceStable(out, func(i, j int) bool {
		ni, si, oki := key(&out[i])
		nj, sj, okj := key(&out[j])
		if !oki || !okj {
			return oki && !okj
		}
		if si != sj {
			if q.Descending {
				return si > sj
			}
			return si < sj
		}
		if q.Descending {
			return ni > nj
		}
		return ni < nj
	})
	return out, nil
}

// sortKey returns an accessor yielding either a number or lowered text for
// the column, and whether the row has a value.
func sortKey(name string) (func(r *models.SurveillanceRecord) (float64, string, bool), bool) {
	number := func(get func(r *models.SurveillanceRecord) *float64) func(r *models.SurveillanceRecord) (float64, string, bool) {
		return func(r *models.SurveillanceRecord) (float64, string, bool) {
			v := get(r)
			if v == nil {
				return 0, "", false
			}
			return *v, "", true
		}
	}
	text := func(get func(r *models.SurveillanceRecord) string) func(r *models.SurveillanceRecord) (float64, string, bool) {
		return func(r *models.SurveillanceRecord) (float64, string, bool) {
			return 0, strings.ToLower(get(r)), true
		}
	}

	switch name {
	case "year":
		return func(r *models.SurveillanceRecord) (float64, string, bool) { return float64(r.Year), "", true }, true
	case "country_code":
		return text(func(r *models.SurveillanceRecord) string { return r.CountryCode }), true
	case "country_name":
		return text(func(r *models.SurveillanceRecord) string { return r.CountryName }), true
	case "t2m":
		return number(func(r *models.SurveillanceRecord) *float64 { return r.T2M }), true
	case "d2m":
		return number(func(r *models.SurveillanceRecord) *float64 { return r.D2M }), true
	case "tp":
		return number(func(r *models.SurveillanceRecord) *float64 { return r.TP }), true
	case "leptospirosis_rate":
		return number(func(r *models.SurveillanceRecord) *float64 { return r.LeptospirosisRate }), true
	case "temperature_celsius":
		return number(func(r *models.SurveillanceRecord) *float64 { return r.TemperatureCelsius }), true
	case "dew_point_celsius":
		return number(func(r *models.SurveillanceRecord) *float64 { return r.DewPointCelsius }), true
	case "relative_humidity":
		return number(func(r *models.SurveillanceRecord) *float64 { return r.RelativeHumidity }), true
	}
	return nil, false
}

// Years returns the distinct years present, ascending.
func Years(records []models.SurveillanceRecord) []int {
	seen := make(map[int]bool)
	years := []int{}
	for _, r := range records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Map builds the markers for year, or for the earliest year when year is
// nil. A year with no records yields no markers.
func Map(records []models.SurveillanceRecord, year *int) models.SurveillanceMap {
	out := models.SurveillanceMap{Years: Years(records), Markers: []models.SurveillanceMarker{}}
	switch {
	case year != nil:
		out.Year = *year
	case len(out.Years) > 0:
		out.Year = out.Years[0]
	default:
		return out
	}

	for _, r := range records {
		if r.Year != out.Year {
			continue
		}
		loc, _ := models.LocationForCode(r.CountryCode)
		out.Markers = append(out.Markers, models.SurveillanceMarker{
			CountryCode:       r.CountryCode,
			CountryName:       r.CountryName,
			Location:          loc,
			LeptospirosisRate: r.LeptospirosisRate,
			Color:             RateColor(r.LeptospirosisRate),
		})
	}
	return out
}

// RateColor maps a rate onto a green to red scale between the observed
// bounds, clamping outside them.
func RateColor(rate *float64) string {
	if rate == nil {
		return NoRateColor
	}
	n := math.Min(math.Max((*rate-rateLower)/(rateUpper-rateLower), 0), 1)
	red := int(math.Floor(255 * n))
	green := int(math.Floor(255 * (1 - n)))
	return fmt.Sprintf("rgb(%d, %d, 0)", red, green)
}

// Countries lists the distinct country codes in first-seen order, named by
// the last record carrying each code.
func Countries(records []models.SurveillanceRecord) []models.SurveillanceCountry {
	index := make(map[string]int)
	out := []models.SurveillanceCountry{}
	for _, r := range records {
		if i, ok := index[r.CountryCode]; ok {
			out[i].Name = r.CountryName
			continue
		}
		index[r.CountryCode] = len(out)
		out = append(out, models.SurveillanceCountry{Code: r.CountryCode, Name: r.CountryName})
	}
	return out
}

// Series returns the year-ordered rates of one country code. ok is false
// when the code has no records.
func Series(records []models.SurveillanceRecord, code string) (models.SurveillanceSeries, bool) {
	code = strings.TrimSpace(code)
	series := models.SurveillanceSeries{Points: []models.SurveillancePoint{}}
	for _, r := range records {
		if !strings.EqualFold(r.CountryCode, code) {
			continue
		}
		series.Country = models.SurveillanceCountry{Code: r.CountryCode, Name: r.CountryName}
		series.Points = append(series.Points, models.SurveillancePoint{Year: r.Year, LeptospirosisRate: r.LeptospirosisRate})
	}
	if len(series.Points) == 0 {
		return series, false
	}
	sort.SliceStable(series.Points, func(i, j int) bool { return series.Points[i].Year < series.Points[j].Year })
	return series, true
}
