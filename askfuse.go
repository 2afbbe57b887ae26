// Package askfuse answers questions over a document corpus by fusing
// knowledge graph context with vector retrieval. The engine expands the
// question into sub-queries guided by the graph, retrieves and curates
// chunks, and synthesizes a cited answer with a language model.
package askfuse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/askfuse/askfuse/cache"
	"github.com/askfuse/askfuse/core/fusion"
	"github.com/askfuse/askfuse/core/graph"
	"github.com/askfuse/askfuse/helper"
	"github.com/askfuse/askfuse/llm"
	"github.com/askfuse/askfuse/model"
)

// maxSummaryRelations bounds the relation lines in the graph context
// handed to the model
const maxSummaryRelations = 20

// Engine orchestrates the retrieval fusion pipeline. The searcher and
// language model client are required; graph store, context store and
// cache are optional and their stages are skipped when absent.
type Engine struct {
	searcher fusion.Searcher
	client   llm.Client
	graph    graph.Store
	contexts fusion.ContextStore
	cache    *cache.QueryCache
	sim      fusion.SimilarityFunc
	log      *slog.Logger
}

// EngineOption configures the engine
type EngineOption func(*Engine)

// WithGraph attaches a knowledge graph store, enabling the kg and
// hybrid routes
func WithGraph(store graph.Store) EngineOption {
	return func(e *Engine) {
		e.graph = store
	}
}

// WithContextStore attaches an adjacent-span store for context expansion
func WithContextStore(store fusion.ContextStore) EngineOption {
	return func(e *Engine) {
		e.contexts = store
	}
}

// WithCache attaches an answer and retrieval cache
func WithCache(queryCache *cache.QueryCache) EngineOption {
	return func(e *Engine) {
		e.cache = queryCache
	}
}

// WithSimilarity overrides the diversity similarity measure used by the
// merge stage
func WithSimilarity(sim fusion.SimilarityFunc) EngineOption {
	return func(e *Engine) {
		e.sim = sim
	}
}

// WithLogger sets the engine logger
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates an engine over a vector searcher and a language
// model client
func NewEngine(searcher fusion.Searcher, client llm.Client, opts ...EngineOption) (*Engine, error) {
	if searcher == nil {
		return nil, helper.NewError("engine validation", fmt.Errorf("searcher is nil"))
	}
	if client == nil {
		return nil, helper.NewError("engine validation", fmt.Errorf("language model client is nil"))
	}

	engine := &Engine{
		searcher: searcher,
		client:   client,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// AnswerOptions tunes a single Answer call. The zero value picks the
// route with the intent heuristic and uses the balanced preset.
type AnswerOptions struct {
	// Route forces a retrieval route; empty lets the intent heuristic
	// decide
	Route model.Route
	// Hops overrides the neighborhood bound for query expansion
	Hops int
	// Params is a flat preset parameter bag, see model.ParsePreset
	Params map[string]any
	// Entities are pre-resolved graph entity matches for anchor
	// selection; when empty the engine matches the question text
	// against the graph node names
	Entities []model.EntityMatch
}

// Answer runs the full pipeline for a question and returns a cited
// answer. Every answer is grounded: when retrieval comes up empty the
// model is told so explicitly instead of being left to improvise.
func (e *Engine) Answer(ctx context.Context, question string, opts AnswerOptions) (*model.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, helper.NewError("answer", fmt.Errorf("question is empty"))
	}

	preset := model.ParsePreset(opts.Params)

	route := opts.Route
	hops := opts.Hops
	if route == "" {
		intent := fusion.ClarifyIntent(question)
		route = intent.Route
		if hops == 0 {
			hops = intent.Hops
		}
	}

	if e.cache != nil {
		if cached, ok := e.cache.GetAnswer(cache.AnswerKey(question, route, preset.Mode)); ok {
			e.log.Debug("Answer cache hit", slog.String("question", question))
			return cached, nil
		}
	}

	queries := fusion.SeedQueries(question)
	graphContext := ""
	if route != model.RouteVector && e.graph != nil {
		anchors := e.resolveAnchors(question, opts.Entities)
		expanded := fusion.ExpandQueries(anchors, e.graph, hops, preset.MaxSubqueries)
		queries = fusion.MergeQueries(queries, expanded)
		graphContext = graph.Summary(e.graph, anchors, e.anchorEdges(anchors, hops), maxSummaryRelations)
	}

	kept, citations, err := e.retrieveAndCurate(ctx, question, queries, preset)
	if err != nil {
		return nil, err
	}

	system, user := fusion.BuildGroundedMessages(question, graphContext, kept, citations, preset, nil)
	answer, err := e.client.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fusion.ErrSynthesis, err)
	}

	result := &model.AnswerResult{
		ResponseID:   uuid.NewString(),
		Answer:       answer,
		Chunks:       kept,
		Citations:    citations,
		ModelUsed:    e.modelName(preset),
		Mode:         preset.Mode,
		Route:        route,
		Queries:      queries,
		GraphContext: graphContext,
	}

	if e.cache != nil {
		e.cache.SetAnswer(cache.AnswerKey(question, route, preset.Mode), result)
	}

	return result, nil
}

// AnswerStructured answers a structured analysis request: retrieval
// queries come from the payload's requirement and sub-requirements, the
// payload's system prompt is used verbatim and structured data is
// extracted from the answer when the model replies with JSON.
func (e *Engine) AnswerStructured(ctx context.Context, payload *fusion.StructuredPayload, params map[string]any) (*model.AnswerResult, error) {
	if payload == nil {
		return nil, helper.NewError("answer structured", fmt.Errorf("payload is nil"))
	}

	preset := model.ParsePreset(params)
	if _, ok := params["max_chunks"]; !ok {
		preset.MaxChunks = 20
		preset.MinChunks = 10
	}
	if _, ok := params["k_each"]; !ok {
		preset.KEach = 5
	}

	question := strings.TrimSpace(payload.Requirement)
	if question == "" {
		question = "Analyze internal capabilities"
	}

	queries := fusion.StructuredQueries(payload)
	kept, citations, err := e.retrieveAndCurate(ctx, question, queries, preset)
	if err != nil {
		return nil, err
	}

	custom := &fusion.CustomPrompt{
		SystemPrompt: payload.SystemPrompt,
		Context:      payload.Context(),
	}
	system, user := fusion.BuildGroundedMessages(question, "", kept, citations, preset, custom)
	answer, err := e.client.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fusion.ErrSynthesis, err)
	}

	result := &model.AnswerResult{
		ResponseID: uuid.NewString(),
		Answer:     answer,
		Chunks:     kept,
		Citations:  citations,
		ModelUsed:  e.modelName(preset),
		Mode:       preset.Mode,
		Route:      model.RouteVector,
		Queries:    queries,
	}
	if data, ok := fusion.ExtractJSON(answer); ok {
		result.JSON = data
	}

	return result, nil
}

// retrieveAndCurate runs retrieval, merge, rerank, context expansion and
// citation mapping for a set of queries
func (e *Engine) retrieveAndCurate(ctx context.Context, question string, queries []model.SubQuery, preset model.Preset) ([]model.Chunk, model.CitationMap, error) {
	searcher := e.searcher
	if e.cache != nil {
		searcher = cachedSearcher{inner: e.searcher, cache: e.cache}
	}

	pool := fusion.RetrieveParallel(ctx, searcher, queries, preset.KEach, preset.RetrievalWorkers, e.log)
	if len(pool) == 0 {
		e.log.Warn("Retrieval produced no chunks", slog.String("question", question), slog.Any("error", fusion.ErrNoEvidence))
	}

	merged := fusion.MMRMerge(pool, preset.MaxChunks*5, preset.LambdaDiv, e.sim)

	ranked, err := fusion.Rerank(ctx, e.client, question, merged, preset.MaxChunks, preset.MinChunks, e.log)
	if err != nil {
		return nil, model.CitationMap{}, helper.NewError("rerank", err)
	}

	expanded := fusion.ExpandContext(ctx, e.contexts, ranked, e.log)
	citations, kept := fusion.BuildCitationMap(expanded, e.log)
	return kept, citations, nil
}

// resolveAnchors picks the anchor nodes for a question, from the
// caller's entity matches or by matching question phrases against the
// graph node names
func (e *Engine) resolveAnchors(question string, entities []model.EntityMatch) []model.Anchor {
	if len(entities) == 0 {
		entities = e.matchEntities(question)
	}
	return fusion.ResolveAnchors(entities, e.graph, 0)
}

// nameMatcher is the optional graph capability used for fallback entity
// matching. MemoryStore implements it.
type nameMatcher interface {
	NodesByName(name string) []*model.GraphNode
}

// matchEntities slides one- to three-word windows over the question and
// matches them against the graph's node names and aliases. Longer
// matches get higher confidence.
func (e *Engine) matchEntities(question string) []model.EntityMatch {
	matcher, ok := e.graph.(nameMatcher)
	if !ok {
		return nil
	}

	words := strings.Fields(question)
	for i, word := range words {
		words[i] = strings.Trim(word, ".,;:!?\"'()")
	}

	var matches []model.EntityMatch
	for n := 3; n >= 1; n-- {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")
			for _, node := range matcher.NodesByName(phrase) {
				matches = append(matches, model.EntityMatch{
					NodeID:     node.ID,
					Confidence: float64(n) / 3,
				})
			}
		}
	}
	return matches
}

// anchorEdges collects the edges spanned by the anchors' neighborhoods
// for the graph context summary
func (e *Engine) anchorEdges(anchors []model.Anchor, hops int) []model.GraphEdge {
	if hops <= 0 {
		hops = fusion.DefaultExpansionHops
	}
	var edges []model.GraphEdge
	for _, anchor := range anchors {
		for _, neighbor := range graph.Neighborhood(e.graph, anchor.Node.ID, hops) {
			edges = append(edges, neighbor.Edge)
		}
	}
	return edges
}

// modelName reports the model recorded on results. The adapter's own
// model wins when it exposes one, otherwise the preset's model is
// assumed.
func (e *Engine) modelName(preset model.Preset) string {
	if named, ok := e.client.(interface{ Model() string }); ok {
		return named.Model()
	}
	return preset.Model
}

// cachedSearcher caches per-query hits around the inner searcher
type cachedSearcher struct {
	inner fusion.Searcher
	cache *cache.QueryCache
}

func (s cachedSearcher) Search(ctx context.Context, query string, k int) ([]model.Chunk, error) {
	if hits, ok := s.cache.GetHits(query); ok {
		return hits, nil
	}
	hits, err := s.inner.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	s.cache.SetHits(query, hits)
	return hits, nil
}
