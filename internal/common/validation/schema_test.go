package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	v, err := NewValidator(3)
	require.NoError(t, err)
	return v
}

func TestValidateJSON_ChatRequest(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"message", `{"message":"How is Germany doing in 2015?"}`, true},
		{"missing message", `{}`, false},
		{"blank message", `{"message":"   "}`, false},
		{"wrong type", `{"message":42}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON(SchemaChatRequest, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.Error())
		})
	}
}

func TestValidateJSON_CompareRequest(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"two countries", `{"countries":["France","Spain"]}`, true},
		{"with year", `{"countries":["France"],"year":2015}`, true},
		{"empty selection", `{"countries":[]}`, false},
		{"too many", `{"countries":["France","Spain","Italy","Malta"]}`, false},
		{"year out of range", `{"countries":["France"],"year":1850}`, false},
		{"string year", `{"countries":["France"],"year":"2015"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON(SchemaCompareRequest, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.Error())
			if !tt.valid {
				assert.NotEmpty(t, res.Errors)
			}
		})
	}
}

func TestValidateDocument_RiskRecord(t *testing.T) {
	v := newTestValidator(t)

	res, err := v.ValidateDocument(SchemaRiskRecord, map[string]interface{}{
		"year": 2015, "country": "Germany", "risk_percentage": 42.3,
	})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.ValidateDocument(SchemaRiskRecord, map[string]interface{}{
		"year": 2015, "country": "Germany", "risk_percentage": nil,
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "risk_percentage", res.Errors[0].Field)
}

func TestValidateJSON_SurveillanceRecord(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"full row", `{"year":2012,"country_code":"DE","country_name":"Germany","t2m":283.1,"d2m":279.4,"tp":0.002,"leptospirosis_rate":0.21,"temperature_celsius":9.95,"dew_point_celsius":6.25,"relative_humidity":77.4}`, true},
		{"null covariates", `{"year":2012,"country_code":"DE","country_name":"Germany","t2m":null,"leptospirosis_rate":null}`, true},
		{"lower case code", `{"year":2012,"country_code":"de","country_name":"Germany"}`, false},
		{"missing name", `{"year":2012,"country_code":"DE"}`, false},
		{"negative rate", `{"year":2012,"country_code":"DE","country_name":"Germany","leptospirosis_rate":-1}`, false},
		{"humidity above 100", `{"year":2012,"country_code":"DE","country_name":"Germany","relative_humidity":101}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON(SchemaSurveillanceRecord, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.Error())
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	v := newTestValidator(t)
	_, err := v.ValidateJSON("nope", []byte(`{}`))
	assert.Error(t, err)
}
