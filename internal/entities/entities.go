// Package entities implements the pattern-based entity triage that seeds the
// source search: a single pass over the input text collecting claims, dates,
// numbers, possible names and links. It is a pure function with no I/O,
// deliberately cheap enough to run on every request.
package entities

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/findorigin/findorigin/internal/model"
)

// urlPattern matches http(s) URLs with a permissive host/path grammar.
var urlPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b[-a-zA-Z0-9()@:%_+.~#?&/=]*`)

// datePatterns cover DD.MM.YYYY, DD.MM.YY, ISO YYYY-MM-DD, and the two
// Russian month-name forms ("15 января 2024", "15 янв 2024"). All matches
// from all patterns are pooled; overlaps are resolved only by exact-string
// dedup.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)\s+\d{2,4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:янв|фев|мар|апр|май|июн|июл|авг|сен|окт|ноя|дек)\.?\s+\d{2,4}\b`),
}

// numberPatterns: grouped/decimal numbers with an optional unit or currency
// suffix, plus bare integers/decimals. The bare pattern is a subset of the
// first, so a unit-qualified match and its bare prefix can both survive
// dedup ("15%" and "15"); that overlap is intentional.
var numberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,3}(?:\s?\d{3})*(?:[.,]\d+)?(?:\s*(?:%|руб\.?|млн|млрд|тыс\.?|USD|EUR))?`),
	regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`),
}

// bareURLPattern rejects claim fragments that are nothing but a link.
var bareURLPattern = regexp.MustCompile(`(?i)^https?://`)

// skipTitleCase lists common short Russian function words that look like
// Title-Case names at sentence starts but never are.
var skipTitleCase = map[string]struct{}{
	"и": {}, "в": {}, "на": {}, "с": {}, "по": {}, "для": {}, "из": {},
	"к": {}, "о": {}, "от": {}, "до": {}, "не": {}, "но": {},
	"как": {}, "что": {}, "это": {}, "все": {}, "его": {}, "её": {}, "их": {},
	"при": {}, "без": {}, "за": {}, "под": {},
	"или": {}, "так": {}, "уже": {}, "еще": {}, "только": {}, "тоже": {},
	"можно": {}, "нужно": {}, "есть": {},
}

const (
	minClaimLen = 11
	maxClaimLen = 500
)

// Extract pulls candidate entities from text. It is total: any input,
// including empty, yields a result with deduplicated (possibly empty) sets.
func Extract(text string) model.ExtractedEntities {
	return model.ExtractedEntities{
		Claims:  extractClaims(text),
		Dates:   matchAll(text, datePatterns),
		Numbers: matchAll(text, numberPatterns),
		Names:   extractNames(text),
		Links:   dedup(urlPattern.FindAllString(text, -1)),
	}
}

// matchAll pools matches from every pattern and dedups by exact string.
func matchAll(text string, patterns []*regexp.Regexp) []string {
	var all []string
	for _, re := range patterns {
		all = append(all, re.FindAllString(text, -1)...)
	}
	return dedup(all)
}

// extractClaims splits the text into sentence-like fragments and keeps the
// ones long enough to be a factual assertion but short enough to search for,
// excluding fragments that are just a URL.
func extractClaims(text string) []string {
	var claims []string
	for _, s := range splitSentences(text) {
		n := len([]rune(s))
		if n < minClaimLen || n > maxClaimLen {
			continue
		}
		if bareURLPattern.MatchString(s) {
			continue
		}
		claims = append(claims, s)
	}
	return dedup(claims)
}

// splitSentences cuts text after `.` `!` `?` followed by whitespace, and on
// any newline. Fragments are trimmed; empty ones are dropped.
func splitSentences(text string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()
	return out
}

// extractNames collects Title-Case tokens: first letter uppercase, no later
// uppercase letter, at least two runes, not a known function word.
func extractNames(text string) []string {
	var names []string
	for _, w := range strings.Fields(text) {
		clean := strings.TrimFunc(w, func(r rune) bool { return !isNameLetter(r) })
		if !isPossibleName(clean) {
			continue
		}
		names = append(names, clean)
	}
	return dedup(names)
}

func isNameLetter(r rune) bool {
	return unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Cyrillic, r)
}

func isPossibleName(token string) bool {
	runes := []rune(token)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	_, skip := skipTitleCase[strings.ToLower(token)]
	return !skip
}

// dedup removes exact-string duplicates preserving first-seen order. A nil
// input stays nil.
func dedup(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
