package buildreport

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/models"
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func germany2015() *Input {
	return &Input{
		Mode:      models.QueryModeSingleYear,
		Countries: []string{"Germany"},
		Year:      models.Int(2015),
		Records: []models.RiskRecord{{
			Country:            "Germany",
			Year:               2015,
			RiskPercentage:     models.Float(42.3),
			RiskLevel:          "Moderate",
			PrimaryFactor:      "Rainfall",
			Recommendations:    "Avoid flood water.",
			RiskFactorAnalysis: "Wet summer.",
		}},
		Series: models.Series{
			Kind:   models.SeriesKindSingle,
			Points: []models.SeriesPoint{{Year: 2015, RiskPercentage: models.Float(42.3)}},
		},
	}
}

// ==========================
// Format
// ==========================

func TestFormat_SingleYear(t *testing.T) {
	report := Format(germany2015())

	lines := strings.Split(report, "\n")
	assert.Equal(t, "Leptospirosis risk report: Germany (2015) - Western Europe", lines[0])
	assert.Contains(t, report, "Germany (primary)")
	assert.Contains(t, report, "  Peak risk: 2015 (42.3%) - Primary")
	assert.Contains(t, report, "  Mean risk: 42.3%")
	assert.Contains(t, report, "  Risk level: Moderate")
	assert.Contains(t, report, "  Recommendations: Avoid flood water.")
	assert.Contains(t, report, "  Risk factors: Wet summer.")
	assert.NotContains(t, report, "Overall peak")
}

func TestFormat_Deterministic(t *testing.T) {
	in := germany2015()
	assert.Equal(t, Format(in), Format(in))
}

func TestFormat_CountryWithoutRecords(t *testing.T) {
	in := &Input{
		Mode:      models.QueryModeMultiComparison,
		Countries: []string{"France", "Malta"},
		Records: []models.RiskRecord{
			{Country: "France", Year: 2010, RiskPercentage: models.Float(20.1), Recommendations: "First."},
			{Country: "France", Year: 2011, RiskPercentage: models.Float(25.4), Recommendations: "Second."},
		},
		Series: models.Series{
			Kind: models.SeriesKindMulti,
			Rows: []models.SeriesRow{
				{Year: 2010, Values: map[string]float64{"France": 20.1}},
				{Year: 2011, Values: map[string]float64{"France": 25.4}},
			},
		},
	}

	report := Format(in)
	assert.True(t, strings.HasPrefix(report, "Leptospirosis risk report: France, Malta\n"))
	assert.Contains(t, report, "Recommendations: First.")
	assert.NotContains(t, report, "Second.")

	malta := report[strings.Index(report, "Malta (comparison)"):]
	for _, field := range []string{"Peak risk", "Mean risk", "Risk level", "Primary factor", "Recommendations", "Risk factors"} {
		assert.Contains(t, malta, "  "+field+": N/A", field)
	}
	assert.Contains(t, report, "Overall peak: 2011 (25.4%) - Primary")
}

func TestFormat_RiskFactorsFallBackToImpacts(t *testing.T) {
	in := &Input{
		Mode:      models.QueryModeSingle,
		Countries: []string{"Spain"},
		Records:   []models.RiskRecord{{Country: "Spain", Year: 2012, RiskPercentage: models.Float(80)}},
		Series: models.Series{
			Kind:   models.SeriesKindSingle,
			Points: []models.SeriesPoint{{Year: 2012, RiskPercentage: models.Float(80)}},
		},
	}

	report := Format(in)
	assert.Contains(t, report, "Risk level: Very High")
	assert.Contains(t, report, "Risk factors: Temperature 64.0, Rainfall 48.0, Population Density 32.0, Previous Cases 56.0")
	assert.Contains(t, report, "Primary factor: N/A")
}

func TestFormat_RecommendationsVerbatim(t *testing.T) {
	in := &Input{
		Mode:      models.QueryModeSingle,
		Countries: []string{"Spain"},
		Records:   []models.RiskRecord{{Country: "Spain", Year: 2012, RiskPercentage: models.Float(80), Recommendations: "  Drain standing water;  wear boots "}},
		Series: models.Series{
			Kind:   models.SeriesKindSingle,
			Points: []models.SeriesPoint{{Year: 2012, RiskPercentage: models.Float(80)}},
		},
	}

	assert.Contains(t, Format(in), "  Recommendations:   Drain standing water;  wear boots \n")
	assert.Equal(t, "For Spain, the risk level is Very High (80%).   Drain standing water;  wear boots ", Summary("Spain", &in.Records[0]))
}

// ==========================
// Chat texts
// ==========================

func TestSummary(t *testing.T) {
	record := &models.RiskRecord{Country: "Germany", RiskPercentage: models.Float(42.3), RiskLevel: "Moderate", Recommendations: "Avoid flood water."}
	assert.Equal(t, "For Germany, the risk level is Moderate (42.3%). Avoid flood water.", Summary("Germany", record))
	assert.Equal(t, NotFoundText, Summary("Germany", nil))
}

func TestNoEntityPrompt(t *testing.T) {
	prompt := NoEntityPrompt(models.Vocabulary{"France", "Spain"})
	assert.True(t, strings.HasPrefix(prompt, NoEntityText))
	assert.True(t, strings.HasSuffix(prompt, "France, Spain."))
	assert.Equal(t, NoEntityText, NoEntityPrompt(nil))
}

func TestNoDataText(t *testing.T) {
	assert.Equal(t, "No data available for Malta in 1999.", NoDataText([]string{"Malta"}, models.Int(1999)))
}

// ==========================
// Handler
// ==========================

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), createTestLogger(t))

	out, err := h.Execute(context.Background(), germany2015())
	require.NoError(t, err)
	assert.Contains(t, out.Report, "Peak risk: 2015 (42.3%) - Primary")
	assert.Equal(t, "For Germany, the risk level is Moderate (42.3%). Avoid flood water.", out.Summary)

	_, err = h.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrNoCountries)
}
