package models

// SurveillanceRecord is one row of the leptospirosis_data table: the observed
// rate for a country and year with the climate covariates it was modelled on.
type SurveillanceRecord struct {
	ID                 int      `json:"id"`
	Year               int      `json:"year"`
	CountryCode        string   `json:"country_code"`
	CountryName        string   `json:"country_name"`
	T2M                *float64 `json:"t2m"`
	D2M                *float64 `json:"d2m"`
	TP                 *float64 `json:"tp"`
	LeptospirosisRate  *float64 `json:"leptospirosis_rate"`
	TemperatureCelsius *float64 `json:"temperature_celsius"`
	DewPointCelsius    *float64 `json:"dew_point_celsius"`
	RelativeHumidity   *float64 `json:"relative_humidity"`
}

// SurveillanceCountry pairs an ISO code with its display name.
type SurveillanceCountry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type SurveillanceMarker struct {
	CountryCode       string          `json:"countryCode"`
	CountryName       string          `json:"countryName"`
	Location          CountryLocation `json:"location"`
	LeptospirosisRate *float64        `json:"leptospirosisRate"`
	Color             string          `json:"color"`
}

// SurveillanceMap is the marker set for one selected year. Years lists every
// year present so a client can offer the others.
type SurveillanceMap struct {
	Year    int                  `json:"year"`
	Years   []int                `json:"years"`
	Markers []SurveillanceMarker `json:"markers"`
}

type SurveillancePoint struct {
	Year              int      `json:"year"`
	LeptospirosisRate *float64 `json:"leptospirosisRate"`
}

// SurveillanceSeries is one country's rate by year, oldest first.
type SurveillanceSeries struct {
	Country SurveillanceCountry `json:"country"`
	Points  []SurveillancePoint `json:"points"`
}
