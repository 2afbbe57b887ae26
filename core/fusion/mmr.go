package fusion

import (
	"sync"

	"github.com/askfuse/askfuse/core/embed"
	"github.com/askfuse/askfuse/model"
)

// SimilarityFunc measures how similar two chunks are, in [0, 1]
type SimilarityFunc func(a *model.Chunk, b *model.Chunk) float64

// TokenOverlap is the default similarity measure: Jaccard overlap of the
// lowercased token sets of the chunk texts. It is deterministic and needs
// no model, which keeps the merge reproducible across runs.
func TokenOverlap(a *model.Chunk, b *model.Chunk) float64 {
	tokensA := a.Tokens()
	tokensB := b.Tokens()
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, token := range tokensA {
		setA[token] = true
	}
	setB := make(map[string]bool, len(tokensB))
	for _, token := range tokensB {
		setB[token] = true
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// EmbeddingSimilarity builds a similarity measure from an embedding
// function using cosine similarity. Embeddings are memoized per chunk
// text; embedding failures fall back to TokenOverlap for that pair.
// The returned func is safe for concurrent use, one engine serves many
// requests with a single similarity measure.
func EmbeddingSimilarity(embedText embed.Func) SimilarityFunc {
	var mu sync.Mutex
	vectors := map[string][]float32{}
	vector := func(text string) []float32 {
		mu.Lock()
		v, ok := vectors[text]
		mu.Unlock()
		if ok {
			return v
		}
		v, err := embedText(text)
		if err != nil {
			v = nil
		}
		mu.Lock()
		vectors[text] = v
		mu.Unlock()
		return v
	}

	return func(a *model.Chunk, b *model.Chunk) float64 {
		va := vector(a.Text)
		vb := vector(b.Text)
		if va == nil || vb == nil {
			return TokenOverlap(a, b)
		}
		return embed.Cosine(va, vb)
	}
}

// MMRMerge deduplicates the pooled chunks and selects up to kFinal of
// them by maximal marginal relevance. Duplicates share a (source file,
// text) key and keep the highest retrieval score seen. Selection
// iteratively maximizes
//
//	lambda*score - (1-lambda)*maxSimilarityToSelected
//
// so lambda 1 ranks purely by relevance and lambda 0 purely by novelty.
// Ties prefer the higher retrieval score, then pool order, which makes
// the merge deterministic for a fixed pool. A nil sim uses TokenOverlap.
func MMRMerge(pool []model.Chunk, kFinal int, lambda float64, sim SimilarityFunc) []model.Chunk {
	if kFinal <= 0 || len(pool) == 0 {
		return nil
	}
	if sim == nil {
		sim = TokenOverlap
	}
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}

	// Dedup keeping the highest score per key, preserving first-seen order
	byKey := map[string]int{}
	var candidates []model.Chunk
	for _, chunk := range pool {
		key := chunk.DedupKey()
		if offset, seen := byKey[key]; seen {
			if chunk.Score > candidates[offset].Score {
				candidates[offset].Score = chunk.Score
			}
			continue
		}
		byKey[key] = len(candidates)
		candidates = append(candidates, chunk)
	}

	if kFinal > len(candidates) {
		kFinal = len(candidates)
	}

	selected := make([]model.Chunk, 0, kFinal)
	remaining := make([]bool, len(candidates))
	for i := range remaining {
		remaining[i] = true
	}

	for len(selected) < kFinal {
		best := -1
		bestValue := 0.0
		for i := range candidates {
			if !remaining[i] {
				continue
			}
			maxSim := 0.0
			for j := range selected {
				if s := sim(&candidates[i], &selected[j]); s > maxSim {
					maxSim = s
				}
			}
			value := lambda*candidates[i].Score - (1-lambda)*maxSim
			if best == -1 || value > bestValue ||
				(value == bestValue && candidates[i].Score > candidates[best].Score) {
				best = i
				bestValue = value
			}
		}
		selected = append(selected, candidates[best])
		remaining[best] = false
	}

	return selected
}
