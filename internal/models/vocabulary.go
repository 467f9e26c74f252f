// internal/models/vocabulary.go
package models

import "strings"

// Vocabulary is the closed, ordered list of recognised country names.
// Order drives extraction order and therefore series and colour assignment.
type Vocabulary []string

// DefaultVocabulary lists the countries plotted on the risk map.
var DefaultVocabulary = Vocabulary{
	"United Kingdom", "Denmark", "Sweden", "Finland", "Estonia", "Netherlands",
	"Latvia", "Lithuania", "Poland", "Czechia", "Germany", "Belgium", "Romania",
	"Luxembourg", "Slovakia", "Austria", "Cyprus", "Hungary", "Slovenia", "Italy",
	"Bulgaria", "Greece", "Spain", "Malta", "France", "Croatia",
}

// NewVocabulary trims and de-duplicates names case-insensitively, keeping
// the first spelling seen.
func NewVocabulary(names []string) Vocabulary {
	seen := make(map[string]bool, len(names))
	out := make(Vocabulary, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Canonical returns the vocabulary spelling of name, matched case-insensitively.
func (v Vocabulary) Canonical(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, entry := range v {
		if strings.EqualFold(entry, name) {
			return entry, true
		}
	}
	return "", false
}

// Contains reports whether name is a recognised country.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v.Canonical(name)
	return ok
}

// String renders the vocabulary as a comma separated list.
func (v Vocabulary) String() string {
	return strings.Join(v, ", ")
}
