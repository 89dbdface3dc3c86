package models

// MatchScore is the score of one (candidate, target) pair.
type MatchScore struct {
	CandidateID string  `json:"candidate_id"`
	TargetID    string  `json:"target_id"`
	Similarity  float64 `json:"similarity"`
	Boost       float64 `json:"boost"`
	FinalScore  float64 `json:"final_score"`
}

// NewMatchScore builds a score with FinalScore = similarity + boost. The sum is never clamped.
func NewMatchScore(candidateID, targetID string, similarity, boost float64) MatchScore {
	return MatchScore{
		CandidateID: candidateID,
		TargetID:    targetID,
		Similarity:  similarity,
		Boost:       boost,
		FinalScore:  similarity + boost,
	}
}

// Key identifies the pair for de-duplication.
func (m MatchScore) Key() string {
	return m.CandidateID + "\x00" + m.TargetID
}

// RankedResult is an ordered, bounded selection of scores.
type RankedResult struct {
	Items []MatchScore `json:"items"`
	// FallbackUsed is set when items below the threshold were added to reach the minimum count.
	FallbackUsed bool `json:"fallback_used"`
}
