package fusion

import (
	"fmt"
	"strings"

	"github.com/askfuse/askfuse/core/graph"
	"github.com/askfuse/askfuse/model"
)

// DefaultExpansionHops bounds the neighborhood walked around each anchor
// during query expansion
const DefaultExpansionHops = 2

// SeedQueries returns the retrieval queries derived from the question
// alone: the question itself plus two fixed paraphrase framings. Seeds
// always run, even when the graph contributes nothing.
func SeedQueries(question string) []model.SubQuery {
	question = strings.TrimSpace(question)
	return []model.SubQuery{
		{Text: question, Provenance: "seed"},
		{Text: "Explain: " + question, Provenance: "seed"},
		{Text: "Summarize: " + question, Provenance: "seed"},
	}
}

// ExpandQueries generates retrieval sub-queries from the anchors'
// graph neighborhoods. Each edge reached within maxHops becomes a short
// phrase "<source> <relation> <target>" with the relation type lowercased
// and underscores replaced by spaces, so both endpoint names co-occur in
// one retrieval query. Queries are deduplicated case-insensitively and
// capped at kMax; anchors are walked in input (confidence) order so the
// cap keeps the most trusted expansions. maxHops <= 0 applies
// DefaultExpansionHops.
func ExpandQueries(anchors []model.Anchor, store graph.Store, maxHops int, kMax int) []model.SubQuery {
	if kMax <= 0 {
		return nil
	}
	if maxHops <= 0 {
		maxHops = DefaultExpansionHops
	}

	seen := map[string]bool{}
	var queries []model.SubQuery
	for _, anchor := range anchors {
		for _, neighbor := range graph.Neighborhood(store, anchor.Node.ID, maxHops) {
			text := relationPhrase(store, neighbor.Edge)
			if text == "" {
				continue
			}
			key := strings.ToLower(text)
			if seen[key] {
				continue
			}
			seen[key] = true
			queries = append(queries, model.SubQuery{
				Text:       text,
				Provenance: fmt.Sprintf("anchor=%s hop=%d", anchor.Node.ID, neighbor.Depth),
			})
			if len(queries) >= kMax {
				return queries
			}
		}
	}
	return queries
}

// relationPhrase renders an edge as a natural language retrieval phrase
func relationPhrase(store graph.Store, edge model.GraphEdge) string {
	source := nodeName(store, edge.Source)
	target := nodeName(store, edge.Target)
	if source == "" || target == "" {
		return ""
	}
	relation := strings.ToLower(strings.ReplaceAll(edge.Type, "_", " "))
	if relation == "" {
		relation = "relates to"
	}
	return fmt.Sprintf("%s %s %s", source, relation, target)
}

func nodeName(store graph.Store, id string) string {
	if node, ok := store.Node(id); ok {
		return node.Name
	}
	return id
}

// MergeQueries concatenates query lists, deduplicating case-insensitively
// while keeping first occurrences and their order
func MergeQueries(lists ...[]model.SubQuery) []model.SubQuery {
	seen := map[string]bool{}
	var merged []model.SubQuery
	for _, list := range lists {
		for _, query := range list {
			key := strings.ToLower(strings.TrimSpace(query.Text))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, query)
		}
	}
	return merged
}
