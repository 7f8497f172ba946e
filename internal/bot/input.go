// Package bot turns Telegram updates into pipeline runs and renders the
// results back as chat messages.
package bot

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/findorigin/findorigin/pkg/telegram"
)

// tmeLinkPattern matches a link to a Telegram post or channel.
var tmeLinkPattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?t\.me/\S+`)

// onlyTmeLinkPattern matches a message that is nothing but a t.me link.
var onlyTmeLinkPattern = regexp.MustCompile(`(?i)^\s*https?://(?:www\.)?t\.me/[^\s]+\s*$`)

// whitespaceRuns collapses every whitespace run, newlines included, so the
// text reaches the extractor as a single line.
var whitespaceRuns = regexp.MustCompile(`\s+`)

// IsTelegramLink reports whether text is a link to a Telegram post/channel.
func IsTelegramLink(text string) bool {
	return tmeLinkPattern.MatchString(strings.TrimSpace(text))
}

// NormalizeText collapses whitespace runs to single spaces and trims the
// text.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
}

// InputText returns the analyzable text of a message, or ("", true) when the
// message is only a link to a Telegram post. Post content cannot be fetched
// through the Bot API, so the caller asks the user to paste the text
// instead. An empty message yields ("", false).
func InputText(msg *telegram.Message) (string, bool) {
	raw := msg.Text
	if raw == "" {
		raw = msg.Caption
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	if onlyTelegramLink(trimmed, entityURLs(trimmed, msg.Entities)) {
		return "", true
	}

	return NormalizeText(trimmed), false
}

// entityURLs extracts deduplicated URLs from message entities (url and
// text_link spans). Entity offsets and lengths are UTF-16 code units per the
// Bot API, so spans are sliced over the UTF-16 encoding of the text.
func entityURLs(text string, ents []telegram.MessageEntity) []string {
	units := utf16.Encode([]rune(text))
	var urls []string
	seen := map[string]struct{}{}
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	for _, e := range ents {
		switch e.Type {
		case "url":
			if e.Offset >= 0 && e.Length > 0 && e.Offset+e.Length <= len(units) {
				add(string(utf16.Decode(units[e.Offset : e.Offset+e.Length])))
			}
		case "text_link":
			add(e.URL)
		}
	}
	return urls
}

// onlyTelegramLink reports whether the message body is just a t.me link:
// either the whole text matches, or the single extracted URL is a t.me link
// and nothing else remains around it.
func onlyTelegramLink(trimmed string, urls []string) bool {
	if onlyTmeLinkPattern.MatchString(trimmed) {
		return true
	}
	if len(urls) != 1 || !IsTelegramLink(urls[0]) {
		return false
	}
	const shortMessageLen = 80
	if len([]rune(trimmed)) >= shortMessageLen {
		return false
	}
	rest := strings.TrimSpace(strings.Replace(trimmed, urls[0], "", 1))
	return rest == ""
}
