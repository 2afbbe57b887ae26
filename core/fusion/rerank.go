package fusion

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/askfuse/askfuse/llm"
	"github.com/askfuse/askfuse/model"
)

// Rerank scores each chunk's relevance to the question with the scorer
// and returns the best chunks in descending score order. A chunk whose
// scoring fails keeps its retrieval score instead of being dropped, so a
// flaky scorer degrades ordering quality but never empties the result.
// The result holds min(topK, available) chunks and never fewer than
// min(minChunks, available). A nil scorer skips scoring and ranks by
// retrieval score alone. Context cancellation aborts the pass and
// returns the error.
func Rerank(ctx context.Context, scorer llm.Scorer, question string, chunks []model.Chunk, topK int, minChunks int, log *slog.Logger) ([]model.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ranked := make([]model.Chunk, len(chunks))
	copy(ranked, chunks)

	if scorer != nil {
		for i := range ranked {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			score, err := scorer.Score(ctx, question, ranked[i].Text)
			if err != nil {
				if !errors.Is(err, llm.ErrScoreUnavailable) {
					return nil, err
				}
				log.Debug("Keeping retrieval score for chunk", slog.String("source", ranked[i].SourceFile), slog.Any("error", err))
				continue
			}
			ranked[i].Score = score
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	keep := min(topK, len(ranked))
	if floor := min(minChunks, len(ranked)); keep < floor {
		keep = floor
	}
	return ranked[:keep], nil
}
