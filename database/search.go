package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askfuse/askfuse/core/embed"
	"github.com/askfuse/askfuse/helper"
	"github.com/askfuse/askfuse/model"
)

// Index composes the chunk handler with an embedding function into the
// vector index the retrieval pipeline searches and expands context
// against
type Index struct {
	chunks    ChunksDBHandlerFunctions
	embedText embed.Func
	log       *slog.Logger
}

// NewIndex creates an Index over a chunk handler and an embedding
// function
func NewIndex(chunks ChunksDBHandlerFunctions, embedText embed.Func, log *slog.Logger) (*Index, error) {
	if chunks == nil {
		return nil, helper.NewError("index validation", fmt.Errorf("chunk handler is nil"))
	}
	if embedText == nil {
		return nil, helper.NewError("index validation", fmt.Errorf("embedding function is nil"))
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Index{chunks: chunks, embedText: embedText, log: log}, nil
}

// Add embeds a chunk's text and stores it in the index
func (i *Index) Add(chunk *model.Chunk) error {
	embedding, err := i.embedText(chunk.Text)
	if err != nil {
		return helper.NewError("embed chunk", err)
	}
	return i.chunks.InsertChunk(chunk, embedding)
}

// Search embeds the query and returns the k most similar chunks, best
// first, scored by cosine similarity
func (i *Index) Search(ctx context.Context, query string, k int) ([]model.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding, err := i.embedText(query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	hits, err := i.chunks.SelectChunksBySimilarity(embedding, k)
	if err != nil {
		return nil, helper.NewError("similarity search", err)
	}

	chunks := make([]model.Chunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, *hit)
	}
	return chunks, nil
}

// Adjacent returns the document text directly before and after a chunk
// in its source file. Chunks without file position information get no
// neighbors.
func (i *Index) Adjacent(ctx context.Context, chunk *model.Chunk) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if chunk.FileID == "" || chunk.ChunkIndex == nil {
		return "", "", nil
	}
	return i.chunks.SelectAdjacentChunks(chunk.FileID, *chunk.ChunkIndex)
}
