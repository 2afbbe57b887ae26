// Package database implements the pgvector-backed chunk index: chunk
// storage, similarity search and adjacent-span lookup through embedded
// SQL functions.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/askfuse/askfuse/helper"
	"github.com/askfuse/askfuse/model"
	loadSql "github.com/askfuse/askfuse/sql"
)

// ChunksDBHandlerFunctions defines the interface for chunk database
// operations
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk, embedding []float32) error
	DeleteChunk(id int) error
	SelectChunk(id int) (*model.Chunk, error)
	SelectChunksByFile(fileID string) ([]*model.Chunk, error)
	SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error)
	SelectAdjacentChunks(fileID string, chunkIndex int) (string, string, error)
	CountChunks() (int64, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL
// functions. If force is true, it will reload the SQL functions even if
// they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates the vector and file indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init chunks table", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a chunk with its embedding. A chunk with the same
// file ID and chunk index is overwritten. The chunk must carry a file ID
// and a chunk index.
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk, embedding []float32) error {
	if chunk.FileID == "" || chunk.ChunkIndex == nil {
		return helper.NewError("chunk validation", fmt.Errorf("chunk needs a file ID and a chunk index"))
	}

	metadata := chunk.Metadata
	if metadata == nil {
		metadata = model.Metadata{}
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6)`,
		chunk.SourceFile,
		chunk.FileID,
		*chunk.ChunkIndex,
		chunk.Text,
		pgvector.NewVector(embedding),
		metadata,
	)

	var id int
	var createdAt time.Time
	err := row.Scan(
		&id,
		&chunk.SourceFile,
		&chunk.FileID,
		chunk.ChunkIndex,
		&chunk.Text,
		&chunk.Metadata,
		&createdAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteChunk deletes a chunk by ID
func (h *ChunksDBHandler) DeleteChunk(id int) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_chunk($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(id int) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	chunk, err := scanChunk(row)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByFile retrieves all chunks of a file in chunk index order
func (h *ChunksDBHandler) SelectChunksByFile(fileID string) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_file($1)`,
		fileID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity retrieves the chunks most similar to the
// given embedding by cosine similarity, best first. The similarity is
// returned as the chunk score in [0, 1].
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, limit int) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		var id int
		chunk := &model.Chunk{ChunkIndex: new(int)}
		err := rows.Scan(
			&id,
			&chunk.SourceFile,
			&chunk.FileID,
			chunk.ChunkIndex,
			&chunk.Text,
			&chunk.Metadata,
			&chunk.Score,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectAdjacentChunks returns the text of the chunks directly before
// and after the given chunk index in the same file. Missing neighbors
// come back as empty strings.
func (h *ChunksDBHandler) SelectAdjacentChunks(fileID string, chunkIndex int) (string, string, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_adjacent_chunks($1, $2)`,
		fileID,
		chunkIndex,
	)

	var before, after string
	err := row.Scan(&before, &after)
	if err != nil {
		return "", "", helper.NewError("scan", err)
	}

	return before, after, nil
}

// CountChunks returns the number of stored chunks
func (h *ChunksDBHandler) CountChunks() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// scanner covers sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*model.Chunk, error) {
	var id int
	var createdAt time.Time
	chunk := &model.Chunk{ChunkIndex: new(int)}
	err := row.Scan(
		&id,
		&chunk.SourceFile,
		&chunk.FileID,
		chunk.ChunkIndex,
		&chunk.Text,
		&chunk.Metadata,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}
