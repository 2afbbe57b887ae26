package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/askfuse/askfuse"
	"github.com/askfuse/askfuse/cache"
	"github.com/askfuse/askfuse/core/embed"
	"github.com/askfuse/askfuse/database"
	"github.com/askfuse/askfuse/helper"
	"github.com/askfuse/askfuse/llm"
	"github.com/askfuse/askfuse/model"
	loadSql "github.com/askfuse/askfuse/sql"
)

const sampleContent = `Mutual fund orders placed before the daily cutoff are priced at that day's net asset value.

Orders placed after the cutoff roll over to the next pricing cycle and are priced at the following day's net asset value.

Settlement of a mutual fund order takes two business days from the pricing date.

Redemption requests follow the same cutoff rules but settle one day later than purchases.

Early redemptions within one year of purchase incur a redemption fee of one percent.`

func main() {
	// Best-effort, OPENAI_API_KEY may already be exported
	_ = godotenv.Load()

	// Start a test PostgreSQL container with pgvector
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

	// Ingest the sample document paragraph by paragraph
	fmt.Println("Ingesting document...")
	for i, paragraph := range strings.Split(sampleContent, "\n\n") {
		chunkIndex := i
		err := index.Add(&model.Chunk{
			Text:       strings.TrimSpace(paragraph),
			SourceFile: "fund_operations.pdf",
			FileID:     "fund-operations",
			ChunkIndex: &chunkIndex,
		})
		if err != nil {
			log.Fatalf("Failed to ingest chunk %d: %v", i, err)
		}
	}

	client := llm.NewOpenAI(os.Getenv("OPENAI_API_KEY"), "gpt-4o-mini")

	engine, err := askfuse.NewEngine(index, client,
		askfuse.WithContextStore(index),
		askfuse.WithCache(cache.New(10*time.Minute, 256)),
	)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	question := "When does a mutual fund order settle?"
	fmt.Printf("\nQuestion: %s\n", question)

	result, err := engine.Answer(context.Background(), question, askfuse.AnswerOptions{
		Route:  model.RouteVector,
		Params: map[string]any{"mode": "concise"},
	})
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}

	fmt.Printf("\nAnswer (%s, %s):\n%s\n", result.Mode, result.ModelUsed, result.Answer)
	fmt.Println("\nSources:")
	for index := 1; index <= result.Citations.Len(); index++ {
		fmt.Printf("  [%d] %s\n", index, result.Citations.Sources[index])
	}
}
