package bot

import (
	"fmt"
	"strings"

	"github.com/findorigin/findorigin/internal/model"
)

// Fixed user-facing strings.
const (
	msgProcessing      = "Обрабатываю…"
	msgOnlyLink        = "По ссылке на пост контент получить нельзя. Скопируйте и пришлите текст поста сюда."
	msgEmptyInput      = "Пришлите текст или ссылку для поиска источников."
	msgSearchThrottled = "Превышен лимит запросов к поиску (serpstack). Попробуйте позже или обновите тариф на https://serpstack.com"

	headerCandidates    = "Найденные кандидаты источников:"
	headerRanked        = "Возможные источники (по смыслу):"
	headerSummary       = "📋 Резюме:"
	headerQuotaFallback = "Квота OpenAI исчерпана. Показаны все найденные кандидаты:"
	headerNoAIFallback  = "Найденные кандидаты источников (AI не использован — добавьте OPENAI_API_KEY для выбора лучших):"

	lineSearchNotConfigured = "Добавьте SERPSTACK_ACCESS_KEY в .env для поиска (https://serpstack.com)."
	lineNothingFound        = "По запросу ничего не найдено."
)

// maxMessageLen caps a reply before Telegram's own 4096 limit.
const maxMessageLen = 4000

// RenderResult builds the chat reply for an analysis result: the ranked
// shortlist with confidence labels, or the category-grouped fallback with a
// header explaining why ranking was not used.
func RenderResult(r *model.AnalysisResult) string {
	var lines []string

	switch r.Mode {
	case model.ModeSearchUnconfigured:
		lines = []string{headerCandidates, lineSearchNotConfigured}
	case model.ModeNoResults:
		lines = []string{headerCandidates, lineNothingFound}
	case model.ModeRanked:
		lines = renderRanked(r.Ranking)
	case model.ModeQuotaExhausted:
		lines = renderFallback(r, headerQuotaFallback)
	case model.ModeFallback:
		lines = renderFallback(r, headerNoAIFallback)
	}

	return truncateMessage(strings.Join(lines, "\n"))
}

func renderRanked(ranking *model.RankingResult) []string {
	var lines []string
	if ranking.Summary != "" {
		lines = append(lines, headerSummary, ranking.Summary, "", headerRanked)
	} else {
		lines = append(lines, headerRanked)
	}
	for i, s := range ranking.Sources {
		lines = append(lines,
			fmt.Sprintf("\n%d. %s", i+1, s.Title),
			"   "+s.URL,
			"   Уверенность: "+s.Confidence.Label(),
		)
	}
	return lines
}

func renderFallback(r *model.AnalysisResult, header string) []string {
	lines := []string{header}
	for _, group := range r.GroupByCategory() {
		lines = append(lines, "\n"+group.Category.Label()+":")
		for _, s := range group.Sources {
			lines = append(lines, "• "+s.Title, "  "+s.URL)
		}
	}
	return lines
}

// truncateMessage cuts a reply to the Telegram-safe cap, marking the cut.
func truncateMessage(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLen {
		return text
	}
	return string(runes[:maxMessageLen-20]) + "\n\n… (обрезано)"
}
