package model

// Route selects which retrieval modalities an answer uses
type Route string

const (
	RouteKG     Route = "kg"
	RouteVector Route = "vector"
	RouteHybrid Route = "hybrid"
)

// AnswerResult is the final structured output of the fusion pipeline.
// Immutable once returned; presentation (markdown, export, HTTP shaping)
// is left to the caller.
type AnswerResult struct {
	// ResponseID identifies this answer, for correlating logs and
	// follow-up requests
	ResponseID string      `json:"response_id"`
	Answer     string      `json:"answer"`
	Chunks     []Chunk     `json:"curated_chunks"`
	Citations  CitationMap `json:"citations"`
	ModelUsed  string      `json:"model_used"`
	Mode       Mode        `json:"mode"`
	Route      Route       `json:"route"`
	Queries    []SubQuery  `json:"queries,omitempty"`
	// GraphContext is the compact graph-derived summary supplied to the
	// model on the kg and hybrid routes, empty on the vector route.
	GraphContext string `json:"graph_context,omitempty"`
	// JSON holds the structured data extracted from the answer in
	// structured-analysis mode, nil when the answer is plain prose.
	JSON map[string]any `json:"json_data,omitempty"`
}
