package search

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/findorigin/findorigin/internal/model"
	"github.com/findorigin/findorigin/pkg/serpstack"
)

// perCategoryCount is the fixed number of results requested per category.
const perCategoryCount = 3

// Searcher fans a query out across the fixed categories. A nil provider
// client means search is not configured: Search then short-circuits to an
// empty candidate list, which the assembler reports as such.
type Searcher struct {
	client serpstack.Client
	count  int
}

// NewSearcher creates a Searcher over the given provider client, which may
// be nil when no access key is configured. count <= 0 falls back to the
// default per-category result count.
func NewSearcher(client serpstack.Client, count int) *Searcher {
	if count <= 0 {
		count = perCategoryCount
	}
	return &Searcher{client: client, count: count}
}

// Configured reports whether a provider client is available.
func (s *Searcher) Configured() bool {
	return s.client != nil
}

// Search builds the base query from entities and issues one provider request
// per category, concurrently. Results keep the fixed category order. A
// failed category contributes zero results; a usage-limit signal from the
// provider aborts the whole operation and is propagated unwrapped, since
// the access key itself is throttled and the remaining categories would
// only fail the same way.
func (s *Searcher) Search(ctx context.Context, entities model.ExtractedEntities) ([]model.CandidateSource, error) {
	if s.client == nil {
		zap.L().Warn("search: no access key configured, skipping")
		return nil, nil
	}

	baseQuery := BuildQuery(entities)
	categories := model.Categories()
	perCategory := make([][]model.CandidateSource, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range categories {
		i, cat := i, cat
		g.Go(func() error {
			query := baseQuery + " " + cat.QuerySuffix()
			resp, err := s.client.Search(gctx, query, s.count)
			if err != nil {
				if eris.Is(err, serpstack.ErrUsageLimit) {
					return err
				}
				zap.L().Error("search: category request failed",
					zap.String("category", string(cat)),
					zap.Error(err),
				)
				return nil
			}
			var found []model.CandidateSource
			for _, r := range resp.OrganicResults {
				if r.URL == "" || r.Title == "" {
					continue
				}
				found = append(found, model.CandidateSource{
					URL:      r.URL,
					Title:    r.Title,
					Snippet:  r.Snippet,
					Category: cat,
				})
			}
			perCategory[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.CandidateSource
	for _, found := range perCategory {
		all = append(all, found...)
	}
	return all, nil
}
