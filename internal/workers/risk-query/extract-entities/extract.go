package extractentities

import (
	"regexp"
	"strconv"
	"strings"

	"lepto-risk-workers/internal/models"
)

var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// Extract finds the vocabulary countries named in message and the first
// year token. Countries come back in vocabulary order, not message order.
func Extract(message string, vocabulary models.Vocabulary) models.ExtractedEntities {
	lower := strings.ToLower(message)

	found := models.ExtractedEntities{Countries: []string{}}
	seen := make(map[string]bool, len(vocabulary))
	for _, country := range vocabulary {
		key := strings.ToLower(country)
		if key == "" || seen[key] {
			continue
		}
		if strings.Contains(lower, key) {
			seen[key] = true
			found.Countries = append(found.Countries, country)
		}
	}

	if token := yearPattern.FindString(message); token != "" {
		if year, err := strconv.Atoi(token); err == nil {
			found.Year = &year
		}
	}
	return found
}
