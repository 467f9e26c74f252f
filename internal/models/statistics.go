// internal/models/statistics.go
package models

// PeakRisk is the highest risk value seen across the selected series.
type PeakRisk struct {
	Year       int     `json:"year"`
	Value      float64 `json:"value"`
	Country    string  `json:"country,omitempty"`
	Comparison bool    `json:"comparison"`
}

// CountryStatistics are the per-country figures shown in a report.
type CountryStatistics struct {
	Country  string    `json:"country"`
	Primary  bool      `json:"primary"`
	HasData  bool      `json:"hasData"`
	Peak     *PeakRisk `json:"peak,omitempty"`
	PeakText string    `json:"peakText"`
	Mean     float64   `json:"mean"`
	MeanText string    `json:"meanText"`
}

// Statistics pools every series for the headline figures and keeps a
// breakdown per country.
type Statistics struct {
	Peak      *PeakRisk           `json:"peak,omitempty"`
	PeakText  string              `json:"peakText"`
	Mean      float64             `json:"mean"`
	MeanText  string              `json:"meanText"`
	Skipped   int                 `json:"skipped"`
	Countries []CountryStatistics `json:"countries"`
}

// FactorImpact is one axis of the risk factor breakdown.
type FactorImpact struct {
	Factor string  `json:"factor"`
	Impact float64 `json:"impact"`
}
