// internal/models/location.go
package models

import "strings"

// CountryLocation is a static map marker for a country.
type CountryLocation struct {
	Code string  `json:"code"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// FallbackLocation is used for countries without known coordinates.
var FallbackLocation = CountryLocation{Lat: 54, Lng: 15}

var countryLocations = map[string]CountryLocation{
	"united kingdom": {"GB", 55.3781, -3.4360},
	"denmark":        {"DK", 56.2639, 9.5018},
	"sweden":         {"SE", 60.1282, 18.6435},
	"finland":        {"FI", 61.9241, 25.7482},
	"estonia":        {"EE", 58.5953, 25.0136},
	"netherlands":    {"NL", 52.1326, 5.2913},
	"latvia":         {"LV", 56.8796, 24.6032},
	"lithuania":      {"LT", 55.1694, 23.8813},
	"poland":         {"PL", 51.9194, 19.1451},
	"czechia":        {"CZ", 49.8175, 15.4730},
	"germany":        {"DE", 51.1657, 10.4515},
	"belgium":        {"BE", 50.5039, 4.4699},
	"romania":        {"RO", 45.9432, 24.9668},
	"luxembourg":     {"LU", 49.8153, 6.1296},
	"slovakia":       {"SK", 48.6690, 19.6990},
	"austria":        {"AT", 47.5162, 14.5501},
	"cyprus":         {"CY", 35.1264, 33.4299},
	"hungary":        {"HU", 47.1625, 19.5033},
	"slovenia":       {"SI", 46.1512, 14.9955},
	"italy":          {"IT", 41.8719, 12.5674},
	"bulgaria":       {"BG", 42.7339, 25.4858},
	"greece":         {"GR", 39.0742, 21.8243},
	"spain":          {"ES", 40.4637, -3.7492},
	"malta":          {"MT", 35.9375, 14.3754},
	"france":         {"FR", 46.6034, 1.8883},
	"croatia":        {"HR", 45.1000, 15.2000},
}

var codeLocations = func() map[string]CountryLocation {
	out := make(map[string]CountryLocation, len(countryLocations))
	for _, loc := range countryLocations {
		out[loc.Code] = loc
	}
	return out
}()

// LocationForCode looks a marker up by ISO 3166 alpha-2 code.
func LocationForCode(code string) (CountryLocation, bool) {
	loc, ok := codeLocations[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return CountryLocation{Code: code, Lat: FallbackLocation.Lat, Lng: FallbackLocation.Lng}, false
	}
	return loc, true
}

// LocationFor returns the marker for country, falling back to central Europe.
func LocationFor(country string) (CountryLocation, bool) {
	loc, ok := countryLocations[strings.ToLower(strings.TrimSpace(country))]
	if !ok {
		return FallbackLocation, false
	}
	return loc, true
}

// Region groups countries that share climate-driven risk thresholds.
type Region string

const (
	RegionNorthern Region = "Northern Europe"
	RegionWestern  Region = "Western Europe"
	RegionSouthern Region = "Southern Europe"
	RegionEastern  Region = "Eastern Europe"
)

var countryRegions = map[string]Region{
	"norway": RegionNorthern, "sweden": RegionNorthern, "finland": RegionNorthern,
	"denmark": RegionNorthern, "iceland": RegionNorthern,

	"uk": RegionWestern, "united kingdom": RegionWestern, "ireland": RegionWestern,
	"france": RegionWestern, "belgium": RegionWestern, "netherlands": RegionWestern,
	"luxembourg": RegionWestern, "germany": RegionWestern,

	"spain": RegionSouthern, "portugal": RegionSouthern, "italy": RegionSouthern,
	"greece": RegionSouthern, "malta": RegionSouthern, "cyprus": RegionSouthern,

	"poland": RegionEastern, "czech republic": RegionEastern, "czechia": RegionEastern,
	"slovakia": RegionEastern, "hungary": RegionEastern, "romania": RegionEastern,
	"bulgaria": RegionEastern,
}

// RegionFor returns the region of a country, if it belongs to one.
func RegionFor(country string) (Region, bool) {
	r, ok := countryRegions[strings.ToLower(strings.TrimSpace(country))]
	return r, ok
}

// MapMarker is a country marker with its latest known risk.
type MapMarker struct {
	Country        string          `json:"country"`
	Location       CountryLocation `json:"location"`
	Year           int             `json:"year,omitempty"`
	RiskLevel      string          `json:"riskLevel,omitempty"`
	RiskPercentage *float64        `json:"riskPercentage,omitempty"`
}
