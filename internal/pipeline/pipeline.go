// Package pipeline orchestrates the provenance pipeline: text → entities →
// query → categorized candidates → AI ranking → assembled result. Every run
// is independent and stateless; data flows strictly left to right.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findorigin/findorigin/internal/entities"
	"github.com/findorigin/findorigin/internal/model"
	"github.com/findorigin/findorigin/internal/search"
	"github.com/findorigin/findorigin/pkg/openai"
	"github.com/findorigin/findorigin/pkg/serpstack"
)

// Searcher is the candidate-search stage.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, e model.ExtractedEntities) ([]model.CandidateSource, error)
}

// Ranker is the AI re-ranking stage.
type Ranker interface {
	Configured() bool
	Rank(ctx context.Context, text string, candidates []model.CandidateSource) (*model.RankingResult, error)
}

// ErrSearchThrottled is returned when the search access key is throttled.
// It is the only condition that crosses the pipeline boundary as an error;
// callers present it as a dedicated "try again later" message.
var ErrSearchThrottled = eris.New("pipeline: search provider throttled")

// Analyzer runs the full pipeline for one input text.
type Analyzer struct {
	searcher Searcher
	ranker   Ranker
}

// NewAnalyzer creates an Analyzer from its two I/O stages.
func NewAnalyzer(searcher Searcher, ranker Ranker) *Analyzer {
	return &Analyzer{searcher: searcher, ranker: ranker}
}

// Analyze runs extraction, search, ranking and assembly over a normalized
// input text. The result always explains its own mode; the only error is
// ErrSearchThrottled.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*model.AnalysisResult, error) {
	result := &model.AnalysisResult{ID: uuid.NewString()}
	log := zap.L().With(zap.String("analysis_id", result.ID))

	result.Entities = entities.Extract(text)
	result.Query = search.BuildQuery(result.Entities)
	log.Info("pipeline: entities extracted",
		zap.Int("claims", len(result.Entities.Claims)),
		zap.Int("names", len(result.Entities.Names)),
		zap.Int("links", len(result.Entities.Links)),
		zap.String("query", result.Query),
	)

	candidates, err := a.searcher.Search(ctx, result.Entities)
	if err != nil {
		if eris.Is(err, serpstack.ErrUsageLimit) {
			log.Warn("pipeline: search access key throttled")
			return nil, ErrSearchThrottled
		}
		// The searcher degrades ordinary failures internally; anything else
		// reaching here is context cancellation or a programming error.
		return nil, eris.Wrap(err, "pipeline: search")
	}
	result.Candidates = candidates

	if len(candidates) == 0 {
		if !a.searcher.Configured() {
			result.Mode = model.ModeSearchUnconfigured
		} else {
			result.Mode = model.ModeNoResults
		}
		log.Info("pipeline: no candidates", zap.String("mode", string(result.Mode)))
		return result, nil
	}
	log.Info("pipeline: candidates collected", zap.Int("count", len(candidates)))

	ranking, err := a.ranker.Rank(ctx, text, candidates)
	if err != nil {
		if eris.Is(err, openai.ErrQuotaExhausted) {
			log.Warn("pipeline: ranking quota exhausted, falling back to raw candidates")
			result.Mode = model.ModeQuotaExhausted
			return result, nil
		}
		return nil, eris.Wrap(err, "pipeline: rank")
	}

	if ranking == nil || len(ranking.Sources) == 0 {
		result.Mode = model.ModeFallback
		log.Info("pipeline: ranking unavailable, falling back to raw candidates")
		return result, nil
	}

	result.Ranking = ranking
	result.Mode = model.ModeRanked
	log.Info("pipeline: ranked", zap.Int("sources", len(ranking.Sources)))
	return result, nil
}
