package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/askfuse/askfuse/model"
)

// Neighbor is a node reached from an anchor together with the edge and
// hop depth that reached it
type Neighbor struct {
	Node     *model.GraphNode
	Edge     model.GraphEdge
	Outgoing bool
	Depth    int
}

// Neighborhood collects the nodes reachable from a source node within
// maxHops, walking outgoing and incoming edges breadth-first. The source
// itself is not included. Neighbors reachable on several paths appear
// once, at their smallest depth.
func Neighborhood(store Store, sourceID string, maxHops int) []Neighbor {
	visited := map[string]bool{sourceID: true}
	frontier := []string{sourceID}
	var results []Neighbor

	for depth := 1; depth <= maxHops && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, edge := range store.EdgesFrom(id) {
				if visited[edge.Target] {
					continue
				}
				node, ok := store.Node(edge.Target)
				if !ok {
					continue
				}
				visited[edge.Target] = true
				results = append(results, Neighbor{Node: node, Edge: edge, Outgoing: true, Depth: depth})
				next = append(next, edge.Target)
			}
			for _, edge := range store.EdgesTo(id) {
				if visited[edge.Source] {
					continue
				}
				node, ok := store.Node(edge.Source)
				if !ok {
					continue
				}
				visited[edge.Source] = true
				results = append(results, Neighbor{Node: node, Edge: edge, Outgoing: false, Depth: depth})
				next = append(next, edge.Source)
			}
		}
		frontier = next
	}

	return results
}

// Summary renders a compact text description of the subgraph spanned by
// the anchors and their supporting edges, for grounding the model on the
// kg and hybrid routes. Relations are rendered as "A -[TYPE]-> B" lines
// in deterministic order.
func Summary(store Store, anchors []model.Anchor, edges []model.GraphEdge, maxRelations int) string {
	if len(anchors) == 0 && len(edges) == 0 {
		return ""
	}

	var b strings.Builder
	if len(anchors) > 0 {
		b.WriteString("Entities:\n")
		for _, anchor := range anchors {
			if anchor.Node.Type != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", anchor.Node.Name, anchor.Node.Type)
			} else {
				fmt.Fprintf(&b, "- %s\n", anchor.Node.Name)
			}
		}
	}

	relations := renderRelations(store, edges)
	sort.Strings(relations)
	if maxRelations > 0 && len(relations) > maxRelations {
		relations = relations[:maxRelations]
	}
	if len(relations) > 0 {
		b.WriteString("Relations:\n")
		for _, rel := range relations {
			b.WriteString(rel)
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderRelations(store Store, edges []model.GraphEdge) []string {
	seen := map[string]bool{}
	var relations []string
	for _, edge := range edges {
		source := nodeName(store, edge.Source)
		target := nodeName(store, edge.Target)
		line := fmt.Sprintf("- %s -[%s]-> %s", source, edge.Type, target)
		if seen[line] {
			continue
		}
		seen[line] = true
		relations = append(relations, line)
	}
	return relations
}

// nodeName falls back to the raw ID for edges whose endpoint is not in
// the store
func nodeName(store Store, id string) string {
	if node, ok := store.Node(id); ok {
		return node.Name
	}
	return id
}
