// internal/models/risk_record.go
package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// RiskRecord is one (country, year) observation from the riskanalysis table.
// Records are never mutated after ingest; the engine only derives new structures.
type RiskRecord struct {
	Year               int      `json:"year"`
	Country            string   `json:"country"`
	PredictedRate      *float64 `json:"predicted_rate"`
	RiskPercentage     *float64 `json:"risk_percentage"`
	RiskLevel          string   `json:"risk_level"`
	PrimaryFactor      string   `json:"primary_factor"`
	Recommendations    string   `json:"recommendations"`
	RiskFactorAnalysis string   `json:"risk_factor_analysis,omitempty"`
}

// HasRisk reports whether the record carries a numeric risk percentage.
// Records without one are MalformedRecord and are skipped by statistics.
func (r RiskRecord) HasRisk() bool {
	return r.RiskPercentage != nil
}

// Risk returns the risk percentage, or 0 when absent. Check HasRisk first.
func (r RiskRecord) Risk() float64 {
	if r.RiskPercentage == nil {
		return 0
	}
	return *r.RiskPercentage
}

// UnmarshalJSON accepts any key casing the upstream collaborator emits
// (Country, country, Risk_Percentage, riskPercentage, ...) and numbers
// encoded either as JSON numbers or as numeric strings. When several
// casings of one field are present, the first non-empty value wins, with
// the snake_case key read first and the others in byte order.
func (r *RiskRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := canonicalKeys[keys[i]], canonicalKeys[keys[j]]
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})

	var out RiskRecord
	for _, key := range keys {
		value := raw[key]
		switch normalizeKey(key) {
		case "year":
			if f := parseNumber(value); f != nil && out.Year == 0 {
				out.Year = int(*f)
			}
		case "country":
			setString(&out.Country, strings.TrimSpace(parseString(value)))
		case "predictedrate":
			setNumber(&out.PredictedRate, parseNumber(value))
		case "riskpercentage":
			setNumber(&out.RiskPercentage, parseNumber(value))
		case "risklevel":
			setString(&out.RiskLevel, parseString(value))
		case "primaryfactor":
			setString(&out.PrimaryFactor, parseString(value))
		case "recommendations":
			setString(&out.Recommendations, parseString(value))
		case "riskfactoranalysis":
			setString(&out.RiskFactorAnalysis, parseString(value))
		}
	}

	*r = out
	return nil
}

var canonicalKeys = map[string]bool{
	"year":                 true,
	"country":              true,
	"predicted_rate":       true,
	"risk_percentage":      true,
	"risk_level":           true,
	"primary_factor":       true,
	"recommendations":      true,
	"risk_factor_analysis": true,
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setNumber(dst **float64, v *float64) {
	if *dst == nil {
		*dst = v
	}
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}

func parseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	return strings.Trim(string(raw), `"`)
}

func parseNumber(raw json.RawMessage) *float64 {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// Float returns a pointer to v. Used by sources and tests to build records.
func Float(v float64) *float64 {
	return &v
}
