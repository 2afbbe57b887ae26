package fusion

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/askfuse/askfuse/model"
)

// DefaultQueryTimeout bounds a single sub-query search so one slow query
// cannot stall the whole retrieval round
const DefaultQueryTimeout = 15 * time.Second

// Searcher runs a single retrieval query against an index and returns
// scored chunks, best first
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]model.Chunk, error)
}

// SearcherFunc adapts a function to the Searcher interface
type SearcherFunc func(ctx context.Context, query string, k int) ([]model.Chunk, error)

func (f SearcherFunc) Search(ctx context.Context, query string, k int) ([]model.Chunk, error) {
	return f(ctx, query, k)
}

// RetrieveParallel runs all sub-queries against the searcher with at most
// workers in flight, collecting up to kEach chunks per query. A failing
// or timed-out query contributes nothing and is logged; it never fails
// the round. The pooled chunks keep query order, so the result is
// deterministic for a fixed searcher, and each chunk is tagged with the
// sub-query that produced it.
func RetrieveParallel(ctx context.Context, searcher Searcher, queries []model.SubQuery, kEach int, workers int, log *slog.Logger) []model.Chunk {
	if len(queries) == 0 || kEach <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	perQuery := make([][]model.Chunk, len(queries))
	group := new(errgroup.Group)
	group.SetLimit(workers)

	for offset, query := range queries {
		group.Go(func() error {
			queryCtx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
			defer cancel()

			hits, err := searcher.Search(queryCtx, query.Text, kEach)
			if err != nil {
				log.Warn("Sub-query retrieval failed", slog.String("query", query.Text), slog.Any("error", err))
				return nil
			}
			if len(hits) > kEach {
				hits = hits[:kEach]
			}
			for i := range hits {
				hits[i].Query = query.Text
			}
			perQuery[offset] = hits
			return nil
		})
	}
	// Workers swallow their errors, Wait only synchronizes
	_ = group.Wait()

	var pool []model.Chunk
	for _, hits := range perQuery {
		pool = append(pool, hits...)
	}
	return pool
}
