package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/askfuse/askfuse"
	"github.com/askfuse/askfuse/core/embed"
	"github.com/askfuse/askfuse/core/graph"
	"github.com/askfuse/askfuse/database"
	"github.com/askfuse/askfuse/helper"
	"github.com/askfuse/askfuse/llm"
	"github.com/askfuse/askfuse/model"
	loadSql "github.com/askfuse/askfuse/sql"
)

const graphJSON = `{
  "nodes": [
    {"id": "order", "name": "MutualFundOrder", "type": "Order", "aliases": ["fund order"]},
    {"id": "portal", "name": "OnlinePortal", "type": "Channel"},
    {"id": "custodian", "name": "Custodian", "type": "Party"},
    {"id": "nav", "name": "NetAssetValue", "type": "Price", "aliases": ["NAV"]}
  ],
  "edges": [
    {"source": "order", "target": "portal", "type": "PLACED_VIA"},
    {"source": "order", "target": "custodian", "type": "SETTLED_BY"},
    {"source": "order", "target": "nav", "type": "PRICED_AT"}
  ]
}`

const sampleContent = `A MutualFundOrder is placed through the OnlinePortal and validated before routing.

Every MutualFundOrder is priced at the NetAssetValue of its pricing cycle.

The Custodian settles each MutualFundOrder two business days after pricing.

The OnlinePortal rejects orders that arrive after the daily cutoff.`

func main() {
	// Best-effort, OPENAI_API_KEY may already be exported
	_ = godotenv.Load()

	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		User:     "postgres",
		Password: "postgres",
		Name:     "askfuse_test",
	}
	db := helper.NewDatabase("askfuse", dbConfig, nil)
	defer db.Close()

	if err := loadSql.Init(db.Instance); err != nil {
		log.Fatalf("Failed to initialize database extensions: %v", err)
	}

	chunks, err := database.NewChunksDBHandler(db, 384, true)
	if err != nil {
		log.Fatalf("Failed to create chunks handler: %v", err)
	}

	embedText, err := embed.Default()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	index, err := database.NewIndex(chunks, embedText, db.Logger)
	if err != nil {
		log.Fatalf("Failed to create index: %v", err)
	}

	fmt.Println("Ingesting document...")
	for i, paragraph := range strings.Split(sampleContent, "\n\n") {
		chunkIndex := i
		err := index.Add(&model.Chunk{
			Text:       strings.TrimSpace(paragraph),
			SourceFile: "order_flow.pdf",
			FileID:     "order-flow",
			ChunkIndex: &chunkIndex,
		})
		if err != nil {
			log.Fatalf("Failed to ingest chunk %d: %v", i, err)
		}
	}

	// Load the knowledge graph
	store, err := graph.LoadJSON(strings.NewReader(graphJSON))
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	fmt.Printf("Loaded graph with %d nodes and %d edges\n", store.NodeCount(), store.EdgeCount())

	client := llm.NewOpenAI(os.Getenv("OPENAI_API_KEY"), "gpt-4o", llm.WithScoreModel("gpt-4o-mini"))

	engine, err := askfuse.NewEngine(index, client,
		askfuse.WithGraph(store),
		askfuse.WithContextStore(index),
	)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	question := "How is a MutualFundOrder placed and settled?"
	fmt.Printf("\nQuestion: %s\n", question)

	result, err := engine.Answer(context.Background(), question, askfuse.AnswerOptions{
		Route: model.RouteHybrid,
	})
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}

	fmt.Printf("\nGraph context:\n%s\n", result.GraphContext)
	fmt.Println("\nSub-queries:")
	for _, query := range result.Queries {
		fmt.Printf("  %s (%s)\n", query.Text, query.Provenance)
	}
	fmt.Printf("\nAnswer (%s):\n%s\n", result.ModelUsed, result.Answer)
	fmt.Println("\nSources:")
	for index := 1; index <= result.Citations.Len(); index++ {
		fmt.Printf("  [%d] %s\n", index, result.Citations.Sources[index])
	}
}
