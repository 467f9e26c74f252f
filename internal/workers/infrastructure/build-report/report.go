package buildreport

import (
	"fmt"
	"strconv"
	"strings"

	"lepto-risk-workers/internal/models"
	computestatistics "lepto-risk-workers/internal/workers/risk-query/compute-statistics"
)

// User-facing texts of the chat flow.
const (
	WelcomeText      = "Hello! I can help you understand Leptospirosis risks across Europe. Ask me about any country!"
	NoEntityText     = "I can help you understand Leptospirosis risks. Which European Country would you like to know about?"
	NotFoundText     = "I couldn't find that information."
	TransportErrText = "Sorry, I encountered an error. Please try again."
)

const na = computestatistics.NotAvailable

// NoEntityPrompt appends the recognised countries to the no-entity prompt.
func NoEntityPrompt(vocab models.Vocabulary) string {
	if len(vocab) == 0 {
		return NoEntityText
	}
	return NoEntityText + " Known countries: " + vocab.String() + "."
}

// NoDataText is shown when a valid selection matched no records.
func NoDataText(countries []string, year *int) string {
	subject := strings.Join(countries, ", ")
	if year != nil {
		subject = fmt.Sprintf("%s in %d", subject, *year)
	}
	return "No data available for " + subject + "."
}

// Summary is the one-line chat answer for a single country.
func Summary(country string, record *models.RiskRecord) string {
	if record == nil {
		return NotFoundText
	}
	pct := na
	if record.HasRisk() {
		pct = strconv.FormatFloat(record.Risk(), 'f', -1, 64) + "%"
	}
	text := fmt.Sprintf("For %s, the risk level is %s (%s).", country, levelOf(record), pct)
	if record.Recommendations != "" {
		text += " " + record.Recommendations
	}
	return text
}

// Format renders the multi-line report: a header, then one section per
// country in query order. Countries without records render N/A in every
// field so the shape never depends on data availability.
func Format(in *Input) string {
	stats := in.Statistics
	if len(stats.Countries) == 0 && len(in.Countries) > 0 {
		stats = computestatistics.Compute(in.Series, in.Countries)
	}
	perCountry := make(map[string]models.CountryStatistics, len(stats.Countries))
	for _, cs := range stats.Countries {
		perCountry[strings.ToLower(cs.Country)] = cs
	}

	var b strings.Builder
	b.WriteString(header(in))
	b.WriteByte('\n')

	for i, country := range in.Countries {
		cs, ok := perCountry[strings.ToLower(country)]
		if !ok {
			cs = models.CountryStatistics{Country: country, PeakText: na, MeanText: na}
		}
		record := firstRecord(in.Records, country)

		role := "comparison"
		if i == 0 {
			role = "primary"
		}
		fmt.Fprintf(&b, "\n%s (%s)\n", country, role)
		fmt.Fprintf(&b, "  Peak risk: %s\n", orNA(cs.PeakText))
		fmt.Fprintf(&b, "  Mean risk: %s\n", orNA(cs.MeanText))

		if record == nil {
			fmt.Fprintf(&b, "  Risk level: %s\n", na)
			fmt.Fprintf(&b, "  Primary factor: %s\n", na)
			fmt.Fprintf(&b, "  Recommendations: %s\n", na)
			fmt.Fprintf(&b, "  Risk factors: %s\n", na)
			continue
		}
		fmt.Fprintf(&b, "  Risk level: %s\n", levelOf(record))
		fmt.Fprintf(&b, "  Primary factor: %s\n", orNA(record.PrimaryFactor))
		fmt.Fprintf(&b, "  Recommendations: %s\n", orNA(record.Recommendations))
		fmt.Fprintf(&b, "  Risk factors: %s\n", riskFactors(record))
	}

	if len(in.Countries) > 1 {
		fmt.Fprintf(&b, "\nOverall peak: %s\n", orNA(stats.PeakText))
		fmt.Fprintf(&b, "Overall mean: %s\n", orNA(stats.MeanText))
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(&b, "Records without numeric risk: %d\n", stats.Skipped)
	}
	return strings.TrimRight(b.String(), "\n")
}

func header(in *Input) string {
	h := "Leptospirosis risk report: " + strings.Join(in.Countries, ", ")
	if in.Year != nil {
		h += fmt.Sprintf(" (%d)", *in.Year)
	}
	if len(in.Countries) == 1 {
		if region, ok := models.RegionFor(in.Countries[0]); ok {
			h += " - " + string(region)
		}
	}
	return h
}

func firstRecord(records []models.RiskRecord, country string) *models.RiskRecord {
	for i := range records {
		if strings.EqualFold(records[i].Country, country) {
			return &records[i]
		}
	}
	return nil
}

func levelOf(record *models.RiskRecord) string {
	if lvl := strings.TrimSpace(record.RiskLevel); lvl != "" {
		return lvl
	}
	if !record.HasRisk() {
		return na
	}
	return computestatistics.RiskLevel(record.Risk())
}

func riskFactors(record *models.RiskRecord) string {
	if text := strings.TrimSpace(record.RiskFactorAnalysis); text != "" {
		return text
	}
	if !record.HasRisk() {
		return na
	}
	impacts := computestatistics.FactorImpacts(record.Risk())
	parts := make([]string, 0, len(impacts))
	for _, fi := range impacts {
		parts = append(parts, fmt.Sprintf("%s %.1f", fi.Factor, fi.Impact))
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}
