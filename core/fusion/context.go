package fusion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/askfuse/askfuse/model"
)

// ContextStore returns the document text adjacent to a chunk, for
// widening the excerpt shown to the model
type ContextStore interface {
	Adjacent(ctx context.Context, chunk *model.Chunk) (before string, after string, err error)
}

// ExpandContext widens each chunk with its adjacent document text from
// the store, filling ExpandedText while leaving Text untouched. The pass
// is best effort: a nil store, a lookup failure or a chunk without
// neighbors leaves the chunk as it is, and chunks that already carry
// expanded text are not expanded again. No chunk is ever dropped.
func ExpandContext(ctx context.Context, store ContextStore, chunks []model.Chunk, log *slog.Logger) []model.Chunk {
	if store == nil {
		return chunks
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	expanded := make([]model.Chunk, len(chunks))
	copy(expanded, chunks)

	for i := range expanded {
		if expanded[i].ExpandedText != "" {
			continue
		}
		before, after, err := store.Adjacent(ctx, &expanded[i])
		if err != nil {
			log.Debug("Context expansion failed for chunk", slog.String("source", expanded[i].SourceFile), slog.Any("error", err))
			continue
		}
		if before == "" && after == "" {
			continue
		}
		parts := make([]string, 0, 3)
		if before != "" {
			parts = append(parts, before)
		}
		parts = append(parts, expanded[i].Text)
		if after != "" {
			parts = append(parts, after)
		}
		expanded[i].ExpandedText = strings.Join(parts, "\n")
	}

	return expanded
}
