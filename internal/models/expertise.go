// Package models defines the data shapes shared by the matching engine, its collaborators and the fan-out path.
package models

import "strings"

// Expertise is the structured summary extracted from a candidate's free text.
type Expertise struct {
	PrimaryField  string   `json:"primaryField"`
	RelatedFields []string `json:"relatedFields"`
	Keywords      []string `json:"keywords"`
}

// EmptyExpertise returns the degraded shape used when extraction fails.
func EmptyExpertise() Expertise {
	return Expertise{RelatedFields: []string{}, Keywords: []string{}}
}

// IsEmpty reports whether no field carries any usable entry.
func (e Expertise) IsEmpty() bool {
	return len(e.KeywordSet()) == 0
}

// Fields returns the primary field followed by the related fields, skipping blanks.
func (e Expertise) Fields() []string {
	return uniqueNonEmpty([]string{e.PrimaryField}, e.RelatedFields)
}

// KeywordSet returns {primaryField} ∪ relatedFields ∪ keywords with blanks removed.
// Order is preserved and the first spelling of a duplicate wins.
func (e Expertise) KeywordSet() []string {
	return uniqueNonEmpty([]string{e.PrimaryField}, e.RelatedFields, e.Keywords)
}

func uniqueNonEmpty(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			key := strings.ToLower(s)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
