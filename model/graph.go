package model

// GraphNode represents an entity in the knowledge graph.
// Nodes are owned by the graph store and read-only for the pipeline.
type GraphNode struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// GraphEdge represents a directed, typed relationship between two nodes.
// Multiple edges between the same pair with different types are allowed.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// EntityMatch is an entity reference produced by upstream graph-side
// matching, before it is resolved against the graph store.
type EntityMatch struct {
	NodeID     string  `json:"node_id"`
	Confidence float64 `json:"confidence"`
}

// Anchor is a resolved graph node selected as a seed for
// neighborhood-guided query expansion
type Anchor struct {
	Node       *GraphNode `json:"node"`
	Confidence float64    `json:"confidence"`
}

// SubQuery is a generated retrieval query with its provenance
// (which anchor and hop produced it) for debugging
type SubQuery struct {
	Text       string `json:"text"`
	Provenance string `json:"provenance,omitempty"`
}
