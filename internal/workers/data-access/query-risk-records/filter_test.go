package queryriskrecords

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lepto-risk-workers/internal/models"
)

func sampleRecords() []models.RiskRecord {
	return []models.RiskRecord{
		{Year: 2010, Country: "France", RiskPercentage: models.Float(20.1), Recommendations: "France 2010"},
		{Year: 2010, Country: "Spain", RiskPercentage: models.Float(30.2), Recommendations: "Spain 2010"},
		{Year: 2011, Country: "France", RiskPercentage: models.Float(25.4), Recommendations: "France 2011"},
		{Year: 2015, Country: "Germany", RiskPercentage: models.Float(42.3), Recommendations: "Germany 2015"},
		{Year: 2016, Country: "Germany", RiskPercentage: nil, Recommendations: "Germany 2016"},
	}
}

func TestFilter(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name      string
		countries []string
		year      *int
		wantRecs  []string
	}{
		{"single country", []string{"France"}, nil, []string{"France 2010", "France 2011"}},
		{"case insensitive", []string{"fRANCE"}, nil, []string{"France 2010", "France 2011"}},
		{"multi keeps input order", []string{"Spain", "France"}, nil, []string{"France 2010", "Spain 2010", "France 2011"}},
		{"with year", []string{"France", "Spain"}, models.Int(2010), []string{"France 2010", "Spain 2010"}},
		{"year without match", []string{"Germany"}, models.Int(1999), []string{}},
		{"unknown country", []string{"Atlantis"}, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.countries, tt.year)
			assert.NotNil(t, got)
			recs := []string{}
			for _, r := range got {
				recs = append(recs, r.Recommendations)
			}
			assert.Equal(t, tt.wantRecs, recs)
		})
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := sampleRecords()
	_ = Filter(records, []string{"Germany"}, nil)
	assert.Equal(t, before, records)
}

func TestDistinctCountries(t *testing.T) {
	assert.Equal(t, []string{"France", "Germany", "Spain"}, DistinctCountries(sampleRecords()))
	assert.Equal(t, []string{}, DistinctCountries(nil))
}

func TestSortRecords_Stable(t *testing.T) {
	records := []models.RiskRecord{
		{Year: 2011, Country: "Spain", Recommendations: "a"},
		{Year: 2010, Country: "Spain", Recommendations: "b"},
		{Year: 2010, Country: "France", Recommendations: "c"},
		{Year: 2010, Country: "Spain", Recommendations: "d"},
	}
	SortRecords(records)

	order := []string{}
	for _, r := range records {
		order = append(order, r.Recommendations)
	}
	assert.Equal(t, []string{"c", "b", "d", "a"}, order)
}
