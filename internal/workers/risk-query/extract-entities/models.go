// internal/workers/risk-query/extract-entities/models.go
package extractentities

type Input struct {
	Message string `json:"message"`
}

// Output is completed even when nothing was recognised; the process routes
// on Recognized instead of catching an error.
type Output struct {
	Countries  []string `json:"countries"`
	Year       *int     `json:"year,omitempty"`
	Recognized bool     `json:"recognized"`
	Vocabulary []string `json:"vocabulary,omitempty"`
}
