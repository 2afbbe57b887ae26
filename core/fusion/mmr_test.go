package fusion

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askfuse/askfuse/model"
)

func TestTokenOverlap(t *testing.T) {
	t.Run("Identical texts overlap fully", func(t *testing.T) {
		a := &model.Chunk{Text: "orders settle in two days"}
		b := &model.Chunk{Text: "orders settle in two days"}
		assert.Equal(t, 1.0, TokenOverlap(a, b))
	})

	t.Run("Disjoint texts do not overlap", func(t *testing.T) {
		a := &model.Chunk{Text: "alpha beta"}
		b := &model.Chunk{Text: "gamma delta"}
		assert.Equal(t, 0.0, TokenOverlap(a, b))
	})

	t.Run("Case is ignored", func(t *testing.T) {
		a := &model.Chunk{Text: "Orders Settle"}
		b := &model.Chunk{Text: "orders settle"}
		assert.Equal(t, 1.0, TokenOverlap(a, b))
	})

	t.Run("Empty text has no overlap", func(t *testing.T) {
		a := &model.Chunk{Text: ""}
		b := &model.Chunk{Text: "orders"}
		assert.Equal(t, 0.0, TokenOverlap(a, b))
	})
}

func TestEmbeddingSimilarity(t *testing.T) {
	// Maps each known text onto an axis-aligned unit vector, so cosine
	// similarity is 1 for equal texts and 0 otherwise.
	axes := map[string][]float32{
		"orders": {1, 0},
		"fees":   {0, 1},
	}
	embedText := func(text string) ([]float32, error) {
		if v, ok := axes[text]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("no embedding for %q", text)
	}

	t.Run("Cosine over embedded texts", func(t *testing.T) {
		sim := EmbeddingSimilarity(embedText)
		orders := &model.Chunk{Text: "orders"}
		fees := &model.Chunk{Text: "fees"}

		assert.InDelta(t, 1.0, sim(orders, orders), 1e-6)
		assert.InDelta(t, 0.0, sim(orders, fees), 1e-6)
	})

	t.Run("Embedding failure falls back to token overlap", func(t *testing.T) {
		sim := EmbeddingSimilarity(embedText)
		a := &model.Chunk{Text: "unknown words here"}
		b := &model.Chunk{Text: "unknown words here"}

		assert.Equal(t, 1.0, sim(a, b), "Expected the token overlap fallback")
	})

	t.Run("Shared measure is safe across concurrent merges", func(t *testing.T) {
		sim := EmbeddingSimilarity(embedText)
		var pool []model.Chunk
		for i := 0; i < 20; i++ {
			pool = append(pool, model.Chunk{
				Text:       fmt.Sprintf("passage %d", i),
				SourceFile: "a.pdf",
				Score:      float64(20-i) / 20,
			})
		}
		expected := MMRMerge(pool, 5, 0.5, sim)

		var wg sync.WaitGroup
		results := make([][]model.Chunk, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = MMRMerge(pool, 5, 0.5, sim)
			}(i)
		}
		wg.Wait()

		for _, merged := range results {
			assert.Equal(t, expected, merged, "Expected identical merges from every goroutine")
		}
	})
}

func TestMMRMerge(t *testing.T) {
	t.Run("Duplicates collapse keeping the highest score", func(t *testing.T) {
		pool := []model.Chunk{
			{Text: "same text", SourceFile: "a.pdf", Score: 0.4},
			{Text: "same text", SourceFile: "a.pdf", Score: 0.9},
			{Text: "same text", SourceFile: "a.pdf", Score: 0.6},
		}

		merged := MMRMerge(pool, 10, 0.5, nil)

		require.Len(t, merged, 1, "Expected duplicates to collapse")
		assert.Equal(t, 0.9, merged[0].Score)
	})

	t.Run("Same text in different files is not a duplicate", func(t *testing.T) {
		pool := []model.Chunk{
			{Text: "same text", SourceFile: "a.pdf", Score: 0.4},
			{Text: "same text", SourceFile: "b.pdf", Score: 0.5},
		}

		merged := MMRMerge(pool, 10, 1.0, nil)
		assert.Len(t, merged, 2)
	})

	t.Run("Lambda one ranks purely by relevance", func(t *testing.T) {
		pool := []model.Chunk{
			{Text: "low", SourceFile: "a.pdf", Score: 0.2},
			{Text: "high", SourceFile: "b.pdf", Score: 0.9},
			{Text: "mid", SourceFile: "c.pdf", Score: 0.5},
		}

		merged := MMRMerge(pool, 2, 1.0, nil)

		require.Len(t, merged, 2)
		assert.Equal(t, "high", merged[0].Text)
		assert.Equal(t, "mid", merged[1].Text)
	})

	t.Run("Diversity penalizes near-duplicates of the selection", func(t *testing.T) {
		pool := []model.Chunk{
			{Text: "settlement takes two business days after the trade", SourceFile: "a.pdf", Score: 0.9},
			{Text: "settlement takes two business days after the trade date", SourceFile: "b.pdf", Score: 0.85},
			{Text: "redemption fees apply to early withdrawals", SourceFile: "c.pdf", Score: 0.5},
		}

		merged := MMRMerge(pool, 2, 0.5, nil)

		require.Len(t, merged, 2)
		assert.Equal(t, "a.pdf", merged[0].SourceFile)
		assert.Equal(t, "c.pdf", merged[1].SourceFile,
			"Expected the novel chunk to beat the near-duplicate")
	})

	t.Run("Ten pooled chunks across three files merge deterministically", func(t *testing.T) {
		var pool []model.Chunk
		files := []string{"a.pdf", "b.pdf", "c.pdf"}
		for i := 0; i < 10; i++ {
			pool = append(pool, model.Chunk{
				Text:       fmt.Sprintf("distinct passage number %d about topic %d", i, i),
				SourceFile: files[i%3],
				Score:      float64(10-i) / 10,
			})
		}

		first := MMRMerge(pool, 5, 0.4, nil)
		second := MMRMerge(pool, 5, 0.4, nil)

		require.Len(t, first, 5)
		assert.Equal(t, first, second, "Expected the merge to be deterministic")
	})

	t.Run("Requesting more than available returns all", func(t *testing.T) {
		pool := []model.Chunk{{Text: "only", SourceFile: "a.pdf", Score: 0.5}}
		assert.Len(t, MMRMerge(pool, 10, 0.5, nil), 1)
	})

	t.Run("Empty pool yields nil", func(t *testing.T) {
		assert.Nil(t, MMRMerge(nil, 5, 0.5, nil))
	})
}
