// Package fusion implements the retrieval fusion stages: anchor
// resolution, graph-guided query expansion, parallel retrieval,
// diversity-aware merging, relevance reranking, context expansion and
// citation-grounded prompt building. Stages are pure functions over
// model types so the orchestrator can compose, reorder or skip them.
package fusion

import (
	"sort"

	"github.com/askfuse/askfuse/core/graph"
	"github.com/askfuse/askfuse/model"
)

// DefaultMaxAnchors bounds the anchor set so query expansion stays cheap
// even on dense graphs
const DefaultMaxAnchors = 20

// ResolveAnchors resolves entity matches against the graph store and
// selects the anchor nodes for query expansion. Matches without a node in
// the store are skipped, duplicates keep their highest confidence, and
// the result is ordered by confidence descending with ties keeping their
// input order. At most maxAnchors anchors are returned; maxAnchors <= 0
// applies DefaultMaxAnchors.
func ResolveAnchors(matches []model.EntityMatch, store graph.Store, maxAnchors int) []model.Anchor {
	if maxAnchors <= 0 {
		maxAnchors = DefaultMaxAnchors
	}

	byID := map[string]int{} // node ID -> offset in anchors
	var anchors []model.Anchor
	for _, match := range matches {
		node, ok := store.Node(match.NodeID)
		if !ok {
			continue
		}
		if offset, seen := byID[node.ID]; seen {
			if match.Confidence > anchors[offset].Confidence {
				anchors[offset].Confidence = match.Confidence
			}
			continue
		}
		byID[node.ID] = len(anchors)
		anchors = append(anchors, model.Anchor{Node: node, Confidence: match.Confidence})
	}

	sort.SliceStable(anchors, func(i, j int) bool {
		return anchors[i].Confidence > anchors[j].Confidence
	})

	if len(anchors) > maxAnchors {
		anchors = anchors[:maxAnchors]
	}
	return anchors
}
