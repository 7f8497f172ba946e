// Package rank asks a language model to pick the 1-3 candidate sources that
// best match the original text by meaning, with strict validation of the
// model's JSON answer.
package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findorigin/findorigin/internal/model"
	"github.com/findorigin/findorigin/pkg/openai"
)

const (
	// maxCandidates bounds how many candidates are serialized into the prompt.
	maxCandidates = 15
	// maxInputChars bounds how much of the original text goes into the prompt.
	maxInputChars = 1500
	// maxSources is the hard cap on ranked sources.
	maxSources = 3
	// defaultMaxTokens bounds the completion.
	defaultMaxTokens = 800
)

const promptTemplate = `Ты помогаешь найти источники информации. Пользователь прислал текст/утверждение. Ниже список кандидатов-источников (ссылки с заголовками и сниппетами).

Твоя задача: выбрать от 1 до 3 источников, которые лучше всего соответствуют тексту пользователя ПО СМЫСЛУ (не обязательно буквальное совпадение). Это могут быть первоисточник, подтверждение факта или релевантная статья.

Исходный текст пользователя:
---
%s
---

Кандидаты-источники:
---
%s
---

Ответь ТОЛЬКО валидным JSON без markdown и комментариев, в формате:
{"sources":[{"url":"...","title":"...","confidence":"high"|"medium"|"low"}, ...]}

Поле confidence: high — источник явно по теме и надёжен, medium — релевантен, low — слабая связь. Выбери не более 3 источников.`

// Ranker compares candidate sources with the original text through the
// completion endpoint. A nil client means ranking is not configured.
type Ranker struct {
	client    openai.Client
	maxTokens int
}

// NewRanker creates a Ranker over the given client, which may be nil when no
// API key is configured. maxTokens <= 0 falls back to the default limit.
func NewRanker(client openai.Client, maxTokens int) *Ranker {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Ranker{client: client, maxTokens: maxTokens}
}

// Configured reports whether a client is available.
func (r *Ranker) Configured() bool {
	return r.client != nil
}

// Rank returns 1-3 sources judged relevant, or nil when ranking is
// unavailable or the model produced nothing usable. The only error it
// returns is openai.ErrQuotaExhausted; every other provider failure is
// logged and degraded to nil.
func (r *Ranker) Rank(ctx context.Context, text string, candidates []model.CandidateSource) (*model.RankingResult, error) {
	if r.client == nil {
		zap.L().Warn("rank: no api key configured, skipping")
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(promptTemplate, truncate(text, maxInputChars), candidatesBlock(candidates))

	maxTokens := r.maxTokens
	resp, err := r.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Messages:       []openai.Message{{Role: "user", Content: prompt}},
		ResponseFormat: &openai.ResponseFormat{Type: "json_object"},
		MaxTokens:      &maxTokens,
	})
	if err != nil {
		if eris.Is(err, openai.ErrQuotaExhausted) {
			return nil, err
		}
		zap.L().Error("rank: completion failed", zap.Error(err))
		return nil, nil
	}

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return parseResponse(resp.Choices[0].Message.Content), nil
}

// candidatesBlock serializes up to maxCandidates into a numbered list with
// title, URL and snippet (dash when empty).
func candidatesBlock(candidates []model.CandidateSource) string {
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	lines := make([]string, 0, len(candidates))
	for i, c := range candidates {
		snippet := c.Snippet
		if snippet == "" {
			snippet = "—"
		}
		lines = append(lines, fmt.Sprintf("%d. %s\n   URL: %s\n   Сниппет: %s", i+1, c.Title, c.URL, snippet))
	}
	return strings.Join(lines, "\n\n")
}

// rawSource mirrors one entry of the shape the model is instructed to
// return, with loose string fields so entries can be validated one by one.
type rawSource struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Confidence string `json:"confidence"`
}

// parseResponse decodes the model's answer into a validated RankingResult.
// The whole batch is rejected (nil) when the envelope is malformed or the
// sources field is not an array; within a valid array, only entries with
// string url and title are kept, with unrecognized confidence defaulted to
// medium. Zero qualifying entries also yields nil.
func parseResponse(content string) *model.RankingResult {
	cleaned := cleanJSON(content)
	if cleaned == "" {
		return nil
	}

	// First decode into a raw envelope to tell a missing/invalid sources
	// field apart from individually malformed entries.
	var envelope struct {
		Sources []json.RawMessage `json:"sources"`
		Summary string            `json:"summary"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil
	}
	if envelope.Sources == nil {
		return nil
	}

	var sources []model.RankedSource
	for _, raw := range envelope.Sources {
		if len(sources) == maxSources {
			break
		}
		var entry rawSource
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if entry.URL == "" || entry.Title == "" {
			continue
		}
		conf := model.Confidence(entry.Confidence)
		if !conf.Valid() {
			conf = model.ConfidenceMedium
		}
		sources = append(sources, model.RankedSource{
			URL:        entry.URL,
			Title:      entry.Title,
			Confidence: conf,
		})
	}
	if len(sources) == 0 {
		return nil
	}
	return &model.RankingResult{Sources: sources, Summary: envelope.Summary}
}

// cleanJSON strips markdown code fences and extracts the outermost JSON
// object from text.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
