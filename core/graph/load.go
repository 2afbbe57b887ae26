package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/askfuse/askfuse/helper"
	"github.com/askfuse/askfuse/model"
)

// graphDocument is the JSON on-disk shape of a knowledge graph:
// a flat node list and a flat edge list
type graphDocument struct {
	Nodes []model.GraphNode `json:"nodes"`
	Edges []model.GraphEdge `json:"edges"`
}

// LoadJSON reads a knowledge graph from its JSON document form.
// Edges referring to unknown nodes are kept; the anchor resolver drops
// unresolvable references at query time instead.
func LoadJSON(r io.Reader) (*MemoryStore, error) {
	var doc graphDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, helper.NewError("decode graph json", err)
	}

	store := NewMemoryStore()
	for i := range doc.Nodes {
		node := doc.Nodes[i]
		if node.ID == "" {
			return nil, helper.NewError("load graph", fmt.Errorf("node %d has no id", i))
		}
		store.AddNode(&node)
	}
	for _, edge := range doc.Edges {
		store.AddEdge(edge)
	}

	return store, nil
}

// LoadJSONFile reads a knowledge graph from a JSON file
func LoadJSONFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open graph file", err)
	}
	defer f.Close()

	return LoadJSON(f)
}
