package validation

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names understood by Validator.
const (
	SchemaChatRequest    = "chat_request"
	SchemaCompareRequest = "compare_request"
	SchemaRiskRecord     = "risk_record"

	SchemaSurveillanceRecord = "surveillance_record"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual messages.
func (r *ValidationResult) Error() string {
	if r == nil || r.Valid {
		return ""
	}
	msg := ""
	for i, e := range r.Errors {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return msg
}

// Validator holds compiled request and record schemas.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the built-in schemas. maxCompare bounds the number
// of countries an explicit comparison may select.
func NewValidator(maxCompare int) (*Validator, error) {
	if maxCompare < 1 {
		maxCompare = 1
	}
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for name, schema := range builtinSchemas(maxCompare) {
		if err := v.Register(name, schema); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Register compiles and stores schema under name.
func (v *Validator) Register(name string, schema map[string]interface{}) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return fmt.Errorf("compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	return nil
}

// ValidateJSON validates a raw JSON document against a registered schema.
func (v *Validator) ValidateJSON(name string, raw []byte) (*ValidationResult, error) {
	return v.validate(name, gojsonschema.NewBytesLoader(raw))
}

// ValidateDocument validates a Go value against a registered schema.
func (v *Validator) ValidateDocument(name string, doc interface{}) (*ValidationResult, error) {
	return v.validate(name, gojsonschema.NewGoLoader(doc))
}

func (v *Validator) validate(name string, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	v.mu.RLock()
	schema, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validate against %s: %w", name, err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    e.Type(),
		})
	}
	return out
}

var nullableNumber = map[string]interface{}{"type": []interface{}{"number", "null"}}

func builtinSchemas(maxCompare int) map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		SchemaChatRequest: {
			"type":     "object",
			"required": []interface{}{"message"},
			"properties": map[string]interface{}{
				"message": map[string]interface{}{
					"type":      "string",
					"minLength": 1,
					"maxLength": 2000,
					"pattern":   `\S`,
				},
			},
		},
		SchemaCompareRequest: {
			"type":     "object",
			"required": []interface{}{"countries"},
			"properties": map[string]interface{}{
				"countries": map[string]interface{}{
					"type":     "array",
					"minItems": 1,
					"maxItems": maxCompare,
					"items": map[string]interface{}{
						"type":      "string",
						"minLength": 1,
					},
				},
				"year": map[string]interface{}{
					"type":    "integer",
					"minimum": 1900,
					"maximum": 2099,
				},
			},
		},
		SchemaRiskRecord: {
			"type":     "object",
			"required": []interface{}{"year", "country", "risk_percentage"},
			"properties": map[string]interface{}{
				"year":            map[string]interface{}{"type": "integer", "minimum": 1900, "maximum": 2099},
				"country":         map[string]interface{}{"type": "string", "minLength": 1},
				"predicted_rate":  map[string]interface{}{"type": []interface{}{"number", "null"}},
				"risk_percentage": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100},
				"risk_level":      map[string]interface{}{"type": "string"},
			},
		},
		SchemaSurveillanceRecord: {
			"type":     "object",
			"required": []interface{}{"year", "country_code", "country_name"},
			"properties": map[string]interface{}{
				"year":                map[string]interface{}{"type": "integer", "minimum": 1900, "maximum": 2099},
				"country_code":        map[string]interface{}{"type": "string", "pattern": "^[A-Z]{2}$"},
				"country_name":        map[string]interface{}{"type": "string", "minLength": 1},
				"t2m":                 nullableNumber,
				"d2m":                 nullableNumber,
				"tp":                  nullableNumber,
				"leptospirosis_rate":  map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0},
				"temperature_celsius": nullableNumber,
				"dew_point_celsius":   nullableNumber,
				"relative_humidity":   map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0, "maximum": 100},
			},
		},
	}
}
