package model

// Confidence is the three-level qualitative relevance label assigned by the
// ranking step.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three recognized values.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Label returns the Russian display label for the confidence level.
func (c Confidence) Label() string {
	switch c {
	case ConfidenceHigh:
		return "высокая"
	case ConfidenceMedium:
		return "средняя"
	case ConfidenceLow:
		return "низкая"
	}
	return string(c)
}

// RankedSource is one source chosen by the ranking step.
type RankedSource struct {
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Confidence Confidence `json:"confidence"`
}

// RankingResult is the validated outcome of the AI ranking step: one to
// three sources plus an optional short summary. A nil *RankingResult means
// ranking was unavailable or produced nothing usable; a non-nil result
// always carries at least one source.
type RankingResult struct {
	Sources []RankedSource `json:"sources"`
	Summary string         `json:"summary,omitempty"`
}
