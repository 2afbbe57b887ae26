package fusion

import (
	"log/slog"

	"github.com/askfuse/askfuse/model"
)

// BuildCitationMap assigns 1-based citation indices to the curated
// chunks in their given order. All chunks from the same source file share
// one index. A chunk without a source file cannot be cited and is
// dropped with a warning rather than shown to the model uncited, so the
// kept chunks and the map always agree. The map is built before the
// prompt so the inline markers the model emits resolve against it.
func BuildCitationMap(chunks []model.Chunk, log *slog.Logger) (model.CitationMap, []model.Chunk) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	citations := model.NewCitationMap()
	kept := make([]model.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.SourceFile == "" {
			log.Warn("Dropping chunk without source file", slog.String("query", chunk.Query))
			continue
		}
		if _, ok := citations.Files[chunk.SourceFile]; !ok {
			index := len(citations.Sources) + 1
			citations.Files[chunk.SourceFile] = index
			citations.Sources[index] = chunk.SourceFile
		}
		kept = append(kept, chunk)
	}

	return citations, kept
}
