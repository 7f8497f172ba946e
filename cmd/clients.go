package main

import (
	"strings"

	"github.com/findorigin/findorigin/internal/config"
	"github.com/findorigin/findorigin/internal/pipeline"
	"github.com/findorigin/findorigin/internal/rank"
	"github.com/findorigin/findorigin/internal/search"
	"github.com/findorigin/findorigin/pkg/openai"
	"github.com/findorigin/findorigin/pkg/serpstack"
)

// buildAnalyzer wires the pipeline from configuration. Missing credentials
// leave the corresponding stage unconfigured rather than failing: the
// pipeline degrades and reports the mode instead.
func buildAnalyzer(cfg *config.Config) *pipeline.Analyzer {
	return pipeline.NewAnalyzer(
		search.NewSearcher(newSearchClient(cfg), cfg.Search.PerCategory),
		rank.NewRanker(newRankClient(cfg), cfg.OpenAI.MaxTokens),
	)
}

// newSearchClient returns nil when no usable access key is configured.
func newSearchClient(cfg *config.Config) serpstack.Client {
	key := strings.TrimSpace(cfg.Serpstack.AccessKey)
	if key == "" {
		return nil
	}
	return serpstack.NewClient(key, serpstack.WithBaseURL(cfg.Serpstack.BaseURL))
}

// newRankClient returns nil when no usable API key is configured.
func newRankClient(cfg *config.Config) openai.Client {
	key := strings.TrimSpace(cfg.OpenAI.Key)
	if key == "" {
		return nil
	}
	return openai.NewClient(key,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithModel(cfg.OpenAI.Model),
	)
}
