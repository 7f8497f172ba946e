package model

// ExtractedEntities is the structured bag of candidates pulled from one input
// text: key assertions, dates, numbers, possible proper names and links.
// Every slice is deduplicated by exact string value, first occurrence wins.
type ExtractedEntities struct {
	// Claims are sentence-like fragments treated as candidate factual
	// assertions (11-500 chars, never a bare URL).
	Claims []string `json:"claims"`
	// Dates are raw date substrings as matched in the text.
	Dates []string `json:"dates"`
	// Numbers are raw numeric substrings, optionally with a unit suffix.
	Numbers []string `json:"numbers"`
	// Names are Title-Case tokens that look like names or titles.
	Names []string `json:"names"`
	// Links are http(s) URLs found in the text.
	Links []string `json:"links"`
}

// Empty reports whether no entities of any kind were extracted.
func (e ExtractedEntities) Empty() bool {
	return len(e.Claims) == 0 && len(e.Dates) == 0 && len(e.Numbers) == 0 &&
		len(e.Names) == 0 && len(e.Links) == 0
}
