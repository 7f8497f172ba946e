// Package search builds the search query from extracted entities and fans it
// out across the fixed source categories against the serpstack provider.
package search

import (
	"strings"

	"github.com/findorigin/findorigin/internal/model"
)

const (
	maxClaimLen = 100
	maxQueryLen = 200
	maxNames    = 2

	// fallbackQuery is used when no entity yields any query material.
	fallbackQuery = "источник"
)

// BuildQuery reduces entities to a single bounded query string. Priority:
// the first claim outranks the first two names, which outrank the first
// date.
func BuildQuery(e model.ExtractedEntities) string {
	var parts []string
	if len(e.Claims) > 0 {
		if claim := strings.TrimSpace(truncate(e.Claims[0], maxClaimLen)); claim != "" {
			parts = append(parts, claim)
		}
	}
	if len(e.Names) > 0 {
		n := len(e.Names)
		if n > maxNames {
			n = maxNames
		}
		parts = append(parts, strings.Join(e.Names[:n], " "))
	}
	if len(e.Dates) > 0 {
		parts = append(parts, e.Dates[0])
	}

	query := strings.TrimSpace(strings.Join(parts, " "))
	if query == "" {
		query = fallbackQuery
	}
	return truncate(query, maxQueryLen)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
