package computestatistics

import (
	"fmt"
	"math"

	"lepto-risk-workers/internal/models"
)

// NotAvailable is rendered for figures that have no numeric input.
const NotAvailable = "N/A"

// ValueSelector picks one logical series out of a Series: the primary
// country or a named comparison.
type ValueSelector struct {
	Country    string
	Comparison bool
}

// Selectors makes the first country primary and the rest comparisons.
func Selectors(countries []string) []ValueSelector {
	out := make([]ValueSelector, 0, len(countries))
	for i, c := range countries {
		out = append(out, ValueSelector{Country: c, Comparison: i > 0})
	}
	return out
}

// visit calls fn for every numeric value selected from series, rows in year
// order and selectors in the given order within a row. Single series only
// feed the first selector.
func visit(series models.Series, selectors []ValueSelector, fn func(year int, v float64, sel ValueSelector)) {
	if len(selectors) == 0 {
		return
	}
	if series.Kind != models.SeriesKindMulti {
		for _, p := range series.Points {
			if p.RiskPercentage != nil && !math.IsNaN(*p.RiskPercentage) {
				fn(p.Year, *p.RiskPercentage, selectors[0])
			}
		}
		return
	}
	for _, row := range series.Rows {
		for _, sel := range selectors {
			if v, ok := row.Value(sel.Country); ok && !math.IsNaN(v) {
				fn(row.Year, v, sel)
			}
		}
	}
}

// PeakRisk returns the largest selected value. Ties keep the first value
// seen. It returns nil when nothing numeric was selected.
func PeakRisk(series models.Series, selectors []ValueSelector) *models.PeakRisk {
	var peak *models.PeakRisk
	visit(series, selectors, func(year int, v float64, sel ValueSelector) {
		if peak == nil || v > peak.Value {
			peak = &models.PeakRisk{Year: year, Value: v, Country: sel.Country, Comparison: sel.Comparison}
		}
	})
	return peak
}

// MeanRisk pools every selected value and divides by how many there were.
// No values yields 0.
func MeanRisk(series models.Series, selectors []ValueSelector) float64 {
	mean, _ := meanAndCount(series, selectors)
	return mean
}

func meanAndCount(series models.Series, selectors []ValueSelector) (float64, int) {
	var sum float64
	var count int
	visit(series, selectors, func(_ int, v float64, _ ValueSelector) {
		sum += v
		count++
	})
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// FormatPeak renders "<year> (<value>%) - <Primary|Comparison>".
func FormatPeak(peak *models.PeakRisk) string {
	if peak == nil {
		return NotAvailable
	}
	label := "Primary"
	if peak.Comparison {
		label = "Comparison"
	}
	return fmt.Sprintf("%d (%.1f%%) - %s", peak.Year, peak.Value, label)
}

// FormatMean renders a mean to one decimal with a trailing percent sign.
func FormatMean(mean float64) string {
	return fmt.Sprintf("%.1f%%", mean)
}

// Compute returns the pooled peak and mean across countries plus a
// per-country breakdown in country order.
func Compute(series models.Series, countries []string) models.Statistics {
	selectors := Selectors(countries)
	if series.Kind != models.SeriesKindMulti && len(selectors) > 1 {
		selectors = selectors[:1]
	}

	peak := PeakRisk(series, selectors)
	mean := MeanRisk(series, selectors)
	stats := models.Statistics{
		Peak:      peak,
		PeakText:  FormatPeak(peak),
		Mean:      mean,
		MeanText:  FormatMean(mean),
		Countries: make([]models.CountryStatistics, 0, len(countries)),
	}

	for i, country := range countries {
		cs := models.CountryStatistics{Country: country, Primary: i == 0, PeakText: NotAvailable, MeanText: NotAvailable}
		if i < len(selectors) {
			only := selectors[i : i+1]
			if m, n := meanAndCount(series, only); n > 0 {
				cs.HasData = true
				cs.Peak = PeakRisk(series, only)
				cs.PeakText = FormatPeak(cs.Peak)
				cs.Mean = m
				cs.MeanText = FormatMean(m)
			}
		}
		stats.Countries = append(stats.Countries, cs)
	}
	return stats
}

// CountMalformed counts records without a numeric risk percentage.
func CountMalformed(records []models.RiskRecord) int {
	n := 0
	for _, r := range records {
		if !r.HasRisk() {
			n++
		}
	}
	return n
}

// YAxisDomain pads the value range by 10% on both ends, floors the lower
// bound at zero and rounds outwards. With no values it is [0, 100].
func YAxisDomain(series models.Series) [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	collect := func(v float64) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if series.Kind == models.SeriesKindMulti {
		for _, row := range series.Rows {
			for _, v := range row.Values {
				collect(v)
			}
		}
	} else {
		for _, p := range series.Points {
			if p.RiskPercentage != nil {
				collect(*p.RiskPercentage)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return [2]float64{0, 100}
	}

	padding := (hi - lo) * 0.1
	return [2]float64{math.Max(0, math.Floor(lo-padding)), math.Ceil(hi + padding)}
}

// Risk level bands.
const (
	RiskLevelVeryHigh = "Very High"
	RiskLevelHigh     = "High"
	RiskLevelModerate = "Moderate"
	RiskLevelLow      = "Low"
)

// RiskLevel bands a risk percentage.
func RiskLevel(pct float64) string {
	switch {
	case pct >= 75:
		return RiskLevelVeryHigh
	case pct >= 50:
		return RiskLevelHigh
	case pct >= 25:
		return RiskLevelModerate
	default:
		return RiskLevelLow
	}
}

// FactorImpacts splits a risk percentage across the modelled drivers.
func FactorImpacts(pct float64) []models.FactorImpact {
	return []models.FactorImpact{
		{Factor: "Temperature", Impact: pct * 0.8},
		{Factor: "Rainfall", Impact: pct * 0.6},
		{Factor: "Population Density", Impact: pct * 0.4},
		{Factor: "Previous Cases", Impact: pct * 0.7},
	}
}
