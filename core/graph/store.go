package graph

import (
	"strings"

	"github.com/askfuse/askfuse/model"
)

// Store defines read-only access to a fully materialized knowledge graph.
// Loading and caching happen before the pipeline runs; no component
// mutates the graph during a request.
type Store interface {
	Node(id string) (*model.GraphNode, bool)
	EdgesFrom(id string) []model.GraphEdge
	EdgesTo(id string) []model.GraphEdge
}

// MemoryStore is an in-memory Store with adjacency indexes for fast
// neighborhood traversal
type MemoryStore struct {
	nodes    map[string]*model.GraphNode
	edges    []model.GraphEdge
	outEdges map[string][]int // node ID -> edge offsets
	inEdges  map[string][]int
	names    map[string][]string // lowercased name/alias -> node IDs
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:    make(map[string]*model.GraphNode),
		outEdges: make(map[string][]int),
		inEdges:  make(map[string][]int),
		names:    make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Adding a node with an existing ID
// replaces it.
func (s *MemoryStore) AddNode(node *model.GraphNode) {
	s.nodes[node.ID] = node
	s.names[strings.ToLower(node.Name)] = append(s.names[strings.ToLower(node.Name)], node.ID)
	for _, alias := range node.Aliases {
		s.names[strings.ToLower(alias)] = append(s.names[strings.ToLower(alias)], node.ID)
	}
}

// AddEdge adds a directed edge. Multi-edges between the same pair with
// different types are allowed.
func (s *MemoryStore) AddEdge(edge model.GraphEdge) {
	s.edges = append(s.edges, edge)
	offset := len(s.edges) - 1
	s.outEdges[edge.Source] = append(s.outEdges[edge.Source], offset)
	s.inEdges[edge.Target] = append(s.inEdges[edge.Target], offset)
}

// Node returns the node with the given ID
func (s *MemoryStore) Node(id string) (*model.GraphNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// EdgesFrom returns the outgoing edges of a node
func (s *MemoryStore) EdgesFrom(id string) []model.GraphEdge {
	offsets := s.outEdges[id]
	edges := make([]model.GraphEdge, 0, len(offsets))
	for _, offset := range offsets {
		edges = append(edges, s.edges[offset])
	}
	return edges
}

// EdgesTo returns the incoming edges of a node
func (s *MemoryStore) EdgesTo(id string) []model.GraphEdge {
	offsets := s.inEdges[id]
	edges := make([]model.GraphEdge, 0, len(offsets))
	for _, offset := range offsets {
		edges = append(edges, s.edges[offset])
	}
	return edges
}

// NodesByName returns the nodes whose name or alias matches the given
// text, case-insensitively
func (s *MemoryStore) NodesByName(name string) []*model.GraphNode {
	ids := s.names[strings.ToLower(strings.TrimSpace(name))]
	nodes := make([]*model.GraphNode, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// NodeCount returns the number of nodes in the graph
func (s *MemoryStore) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of edges in the graph
func (s *MemoryStore) EdgeCount() int {
	return len(s.edges)
}
