package model

// Mode explains which path produced an AnalysisResult, so presentation code
// can always tell the user why it is seeing a ranked shortlist, the full
// candidate list, or nothing.
type Mode string

const (
	// ModeRanked: AI ranking succeeded, Ranking holds 1-3 sources.
	ModeRanked Mode = "ranked"
	// ModeFallback: candidates found but AI was not configured or declined
	// to pick anything; Candidates hold the raw category-grouped view.
	ModeFallback Mode = "fallback"
	// ModeQuotaExhausted: the AI credential has no remaining allowance;
	// Candidates hold the raw view.
	ModeQuotaExhausted Mode = "quota_exhausted"
	// ModeNoResults: search ran but found nothing.
	ModeNoResults Mode = "no_results"
	// ModeSearchUnconfigured: no search credential, search was skipped.
	ModeSearchUnconfigured Mode = "search_unconfigured"
)

// AnalysisResult is the assembled outcome of one pipeline run: either a
// ranked shortlist or the flat candidate list, plus the mode explaining
// which of the two it is.
type AnalysisResult struct {
	ID         string            `json:"id"`
	Entities   ExtractedEntities `json:"entities"`
	Query      string            `json:"query"`
	Candidates []CandidateSource `json:"candidates"`
	Ranking    *RankingResult    `json:"ranking,omitempty"`
	Mode       Mode              `json:"mode"`
}

// GroupByCategory returns candidates bucketed by category, in the fixed
// category order, skipping empty categories. Used by the fallback view.
func (r *AnalysisResult) GroupByCategory() []CategoryGroup {
	var groups []CategoryGroup
	for _, cat := range Categories() {
		var items []CandidateSource
		for _, c := range r.Candidates {
			if c.Category == cat {
				items = append(items, c)
			}
		}
		if len(items) > 0 {
			groups = append(groups, CategoryGroup{Category: cat, Sources: items})
		}
	}
	return groups
}

// CategoryGroup is one category's slice of the fallback view.
type CategoryGroup struct {
	Category SearchCategory    `json:"category"`
	Sources  []CandidateSource `json:"sources"`
}
