package fusion

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askfuse/askfuse/model"
)

func TestRetrieveParallel(t *testing.T) {
	queries := []model.SubQuery{
		{Text: "first"},
		{Text: "second"},
		{Text: "third"},
	}

	t.Run("Pools chunks in query order", func(t *testing.T) {
		searcher := SearcherFunc(func(ctx context.Context, query string, k int) ([]model.Chunk, error) {
			return []model.Chunk{{Text: "hit for " + query, SourceFile: query + ".pdf", Score: 0.5}}, nil
		})

		pool := RetrieveParallel(context.Background(), searcher, queries, 3, 2, nil)

		require.Len(t, pool, 3)
		assert.Equal(t, "hit for first", pool[0].Text)
		assert.Equal(t, "hit for second", pool[1].Text)
		assert.Equal(t, "hit for third", pool[2].Text)
	})

	t.Run("Tags chunks with the producing query", func(t *testing.T) {
		searcher := SearcherFunc(func(ctx context.Context, query string, k int) ([]model.Chunk, error) {
			return []model.Chunk{{Text: "hit", SourceFile: "a.pdf"}}, nil
		})

		pool := RetrieveParallel(context.Background(), searcher, queries[:1], 3, 2, nil)

		require.Len(t, pool, 1)
		assert.Equal(t, "first", pool[0].Query)
	})

	t.Run("A failing query contributes nothing but does not fail the round", func(t *testing.T) {
		searcher := SearcherFunc(func(ctx context.Context, query string, k int) ([]model.Chunk, error) {
			if query == "second" {
				return nil, fmt.Errorf("index unavailable")
			}
			return []model.Chunk{{Text: "hit for " + query, SourceFile: query + ".pdf"}}, nil
		})

		pool := RetrieveParallel(context.Background(), searcher, queries, 3, 2, nil)

		require.Len(t, pool, 2, "Expected the failing query to be isolated")
		for _, chunk := range pool {
			assert.NotContains(t, chunk.Text, "second")
		}
	})

	t.Run("Truncates overlong result lists to kEach", func(t *testing.T) {
		searcher := SearcherFunc(func(ctx context.Context, query string, k int) ([]model.Chunk, error) {
			hits := make([]model.Chunk, 10)
			for i := range hits {
				hits[i] = model.Chunk{Text: fmt.Sprintf("hit %d", i), SourceFile: "a.pdf"}
			}
			return hits, nil
		})

		pool := RetrieveParallel(context.Background(), searcher, queries[:1], 2, 1, nil)

		assert.Len(t, pool, 2)
	})

	t.Run("Respects the worker bound", func(t *testing.T) {
		var inFlight, maxInFlight atomicCounter
		searcher := SearcherFunc(func(ctx context.Context, query string, k int) ([]model.Chunk, error) {
			current := inFlight.Add(1)
			maxInFlight.Max(current)
			defer inFlight.Add(-1)
			return []model.Chunk{{Text: "hit", SourceFile: "a.pdf"}}, nil
		})

		many := make([]model.SubQuery, 12)
		for i := range many {
			many[i] = model.SubQuery{Text: strings.Repeat("q", i+1)}
		}
		RetrieveParallel(context.Background(), searcher, many, 1, 2, nil)

		assert.LessOrEqual(t, maxInFlight.Load(), int64(2), "Expected at most two searches in flight")
	})

	t.Run("Empty query list yields nil", func(t *testing.T) {
		searcher := SearcherFunc(func(ctx context.Context, query string, k int) ([]model.Chunk, error) {
			t.Fatal("searcher must not be called")
			return nil, nil
		})

		assert.Nil(t, RetrieveParallel(context.Background(), searcher, nil, 3, 2, nil))
	})
}

// atomicCounter tracks concurrent searches and their high-water mark
type atomicCounter struct {
	value atomic.Int64
}

func (c *atomicCounter) Add(delta int64) int64 {
	return c.value.Add(delta)
}

func (c *atomicCounter) Max(candidate int64) {
	for {
		current := c.value.Load()
		if candidate <= current {
			return
		}
		if c.value.CompareAndSwap(current, candidate) {
			return
		}
	}
}

func (c *atomicCounter) Load() int64 {
	return c.value.Load()
}
