// Package ranking scores candidate/target pairs with rule-based boosts and selects
// ranked results under a threshold, minimum-count fallback and cap.
package ranking

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// BoostInput is everything the lexical boost rules look at for one pair.
type BoostInput struct {
	CategoryName string
	Expertise    models.Expertise
	TargetTitle  string
	CombinedText string
}

// BoostBreakdown records which rules fired.
type BoostBreakdown struct {
	CategoryField bool    `json:"category_field"`
	TitleKeyword  bool    `json:"title_keyword"`
	TextKeyword   bool    `json:"text_keyword"`
	Total         float64 `json:"total"`
}

// Boost returns the total additive boost for in.
func Boost(cfg BoostConfig, in BoostInput) float64 {
	return Explain(cfg, in).Total
}

// Explain evaluates every rule independently. The title and combined-text rules can both
// fire for the same keyword because the title is part of the combined text.
func Explain(cfg BoostConfig, in BoostInput) BoostBreakdown {
	var b BoostBreakdown
	keywords := in.Expertise.KeywordSet()
	category, title, text := cfg.Resolved()

	if ContainsAnyFold(in.CategoryName, in.Expertise.Fields()) {
		b.CategoryField = true
		b.Total += category
	}
	if ContainsAnyFold(in.TargetTitle, keywords) {
		b.TitleKeyword = true
		b.Total += title
	}
	if ContainsAnyFold(in.CombinedText, keywords) {
		b.TextKeyword = true
		b.Total += text
	}
	return b
}

// ContainsAnyFold reports whether haystack contains any non-blank needle, ignoring case.
func ContainsAnyFold(haystack string, needles []string) bool {
	if haystack == "" || len(needles) == 0 {
		return false
	}
	fold := cases.Fold()
	h := fold.String(haystack)
	for _, n := range needles {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if strings.Contains(h, fold.String(n)) {
			return true
		}
	}
	return false
}
