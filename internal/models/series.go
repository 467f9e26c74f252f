// internal/models/series.go
package models

import (
	"encoding/json"
	"sort"
)

// SeriesKind tags which half of Series is populated.
type SeriesKind string

const (
	SeriesKindSingle SeriesKind = "single"
	SeriesKindMulti  SeriesKind = "multi"
)

// SeriesPoint is one year of a single-country series. A nil value means
// the underlying record had no numeric risk.
type SeriesPoint struct {
	Year           int      `json:"year"`
	RiskPercentage *float64 `json:"riskPercentage"`
}

// SeriesRow is one year of a comparison pivot. Countries without data for
// the year have no key at all.
type SeriesRow struct {
	Year   int
	Values map[string]float64
}

// Value returns the value for country and whether it is present.
func (r SeriesRow) Value(country string) (float64, bool) {
	v, ok := r.Values[country]
	return v, ok
}

// MarshalJSON flattens the row into {"year": 2010, "France": 12.3, ...}.
func (r SeriesRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(r.Values)+1)
	for country, v := range r.Values {
		flat[country] = v
	}
	flat["year"] = r.Year
	return json.Marshal(flat)
}

// UnmarshalJSON reads the flat row shape produced by MarshalJSON.
func (r *SeriesRow) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	out := SeriesRow{Values: make(map[string]float64, len(flat))}
	for key, raw := range flat {
		if key == "year" {
			if err := json.Unmarshal(raw, &out.Year); err != nil {
				return err
			}
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		out.Values[key] = v
	}
	*r = out
	return nil
}

// Series is the Series Builder output: Points for single modes, Rows for
// comparison modes. Rows and Points are ordered by year ascending.
type Series struct {
	Kind   SeriesKind    `json:"kind"`
	Points []SeriesPoint `json:"points,omitempty"`
	Rows   []SeriesRow   `json:"rows,omitempty"`
}

// Len returns the number of years in the series.
func (s Series) Len() int {
	if s.Kind == SeriesKindMulti {
		return len(s.Rows)
	}
	return len(s.Points)
}

// Years returns the years covered by the series, ascending.
func (s Series) Years() []int {
	years := make([]int, 0, s.Len())
	if s.Kind == SeriesKindMulti {
		for _, row := range s.Rows {
			years = append(years, row.Year)
		}
	} else {
		for _, p := range s.Points {
			years = append(years, p.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Dataset is one line of a comparison chart.
type Dataset struct {
	Label string     `json:"label"`
	Color string     `json:"borderColor"`
	Data  []*float64 `json:"data"`
}

// ChartData is the chart-ready projection of a Series.
type ChartData struct {
	Labels   []int      `json:"labels"`
	Datasets []Dataset  `json:"datasets"`
	Domain   [2]float64 `json:"domain"`
}
