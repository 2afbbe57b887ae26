package model

import "strings"

// Chunk represents a unit of retrieved document text
type Chunk struct {
	Text         string   `json:"text"`
	SourceFile   string   `json:"source_file"`
	FileID       string   `json:"file_id,omitempty"`
	ChunkIndex   *int     `json:"chunk_index,omitempty"`
	Score        float64  `json:"score"`
	ExpandedText string   `json:"expanded_text,omitempty"`
	Query        string   `json:"query,omitempty"` // Sub-query that produced this chunk
	Metadata     Metadata `json:"metadata,omitempty"`
}

// DedupKey identifies a chunk across retrieval stages.
// Two chunks with the same source file and text are duplicates.
func (c *Chunk) DedupKey() string {
	return c.SourceFile + "\x00" + c.Text
}

// ContextText returns the expanded text if context expansion ran,
// otherwise the original chunk text.
func (c *Chunk) ContextText() string {
	if c.ExpandedText != "" {
		return c.ExpandedText
	}
	return c.Text
}

// Tokens returns the lowercased whitespace-split tokens of the chunk text,
// used by the lexical similarity measure.
func (c *Chunk) Tokens() []string {
	return strings.Fields(strings.ToLower(c.Text))
}
