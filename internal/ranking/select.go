package ranking

import (
	"sort"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// Select applies policy to scores and returns the ranked result.
//
// Scores at or above the threshold are kept and sorted by final score, descending. When
// fewer than MinResults qualify, the best of the rest are appended and FallbackUsed is set.
// The list is then cut to MaxResults. Equal scores keep their input order, and a repeated
// (candidate, target) pair is dropped after its first occurrence.
func Select(scores []models.MatchScore, policy Policy) models.RankedResult {
	var qualified, rest []models.MatchScore
	seen := make(map[string]bool, len(scores))
	for _, s := range scores {
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		if s.FinalScore >= policy.Threshold {
			qualified = append(qualified, s)
		} else {
			rest = append(rest, s)
		}
	}

	sortDescending(qualified)
	result := models.RankedResult{Items: qualified}

	if missing := policy.MinResults - len(qualified); missing > 0 && len(rest) > 0 {
		sortDescending(rest)
		if missing > len(rest) {
			missing = len(rest)
		}
		result.Items = append(result.Items, rest[:missing]...)
		result.FallbackUsed = true
	}

	if policy.MaxResults > 0 && len(result.Items) > policy.MaxResults {
		result.Items = result.Items[:policy.MaxResults]
	}
	if result.Items == nil {
		result.Items = []models.MatchScore{}
	}
	return result
}

func sortDescending(s []models.MatchScore) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].FinalScore > s[j].FinalScore })
}
