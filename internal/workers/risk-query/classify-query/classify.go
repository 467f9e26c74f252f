package classifyquery

import (
	"errors"
	"fmt"
	"strings"

	"lepto-risk-workers/internal/models"
)

var (
	ErrNoCountries      = errors.New("NO_ENTITY_RECOGNIZED")
	ErrTooManyCountries = errors.New("INVALID_SELECTION")
	ErrUnknownCountry   = errors.New("INVALID_SELECTION")
)

// Classify decides the query mode from the number of countries and the
// presence of a year. Which countries are passed never matters.
func Classify(countries []string, year *int) (models.QueryMode, error) {
	switch {
	case len(countries) == 0:
		return "", ErrNoCountries
	case len(countries) == 1 && year != nil:
		return models.QueryModeSingleYear, nil
	case len(countries) == 1:
		return models.QueryModeSingle, nil
	case year != nil:
		return models.QueryModeMultiComparisonYear, nil
	default:
		return models.QueryModeMultiComparison, nil
	}
}

// ValidateSelection canonicalises an explicit selection against vocabulary,
// drops duplicates while keeping selection order and enforces max.
func ValidateSelection(countries []string, vocabulary models.Vocabulary, max int) ([]string, error) {
	out := make([]string, 0, len(countries))
	seen := make(map[string]bool, len(countries))
	for _, c := range countries {
		name := strings.TrimSpace(c)
		if name == "" {
			continue
		}
		canonical, ok := vocabulary.Canonical(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown country %q", ErrUnknownCountry, name)
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}

	if len(out) == 0 {
		return nil, ErrNoCountries
	}
	if max > 0 && len(out) > max {
		return nil, fmt.Errorf("%w: at most %d countries can be compared, got %d", ErrTooManyCountries, max, len(out))
	}
	return out, nil
}
