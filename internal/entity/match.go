package entity

// MatchCandidate is one catalog entry proposed for a query.
// Score is defined by the matching service; higher is better.
type MatchCandidate struct {
	Label *string
	Score *float64
}

// MatchBatchResult maps each query string to its candidates, best first.
type MatchBatchResult map[string][]MatchCandidate
