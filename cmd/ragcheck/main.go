package main

import (
	"context"
	"log"
	"math"
	"os"

	"chatbot-router-be/pkg/database"
	"chatbot-router-be/pkg/embedding"
	"chatbot-router-be/pkg/vectorstore"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// ragcheck verifies the retrieval pipeline end to end against a live
// database: embedding determinism, collection presence and a sample
// nearest-neighbor query.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	color.Cyan("🚀 RAG Pipeline Diagnostic\n")

	// 1. Embedding determinism
	color.Yellow("\n[1] Hash embedding determinism")
	provider := embedding.NewHashProvider(384)

	query := "오늘 날씨 어때?"
	first, err := provider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	second, _ := provider.Generate(query, "RETRIEVAL_QUERY")
	for i := range first.Embedding.Values {
		if first.Embedding.Values[i] != second.Embedding.Values[i] {
			color.Red("Embedding is not deterministic at dim %d", i)
			os.Exit(1)
		}
	}

	var norm float64
	for _, v := range first.Embedding.Values {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1) > 1e-4 {
		color.Red("Embedding norm is %f, expected 1", norm)
		os.Exit(1)
	}
	color.Green("OK: 384 dims, unit norm, deterministic")

	// 2. Database connectivity
	color.Yellow("\n[2] Database connectivity")
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("DB_CONNECTION_STRING not set")
		os.Exit(1)
	}
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Failed to connect: %v", err)
		os.Exit(1)
	}
	color.Green("OK: connected")

	// 3. Collections
	ctx := context.Background()
	store := vectorstore.NewPgStore(db, 384)

	color.Yellow("\n[3] Collections")
	collections, err := store.ListCollections(ctx)
	if err != nil {
		color.Red("Failed to list collections: %v", err)
		os.Exit(1)
	}
	if len(collections) == 0 {
		color.Yellow("No collections yet. Upload a document first.")
		return
	}
	color.Green("OK: %d collection(s): %v", len(collections), collections)

	// 4. Sample query
	color.Yellow("\n[4] Sample nearest-neighbor query")
	matches, err := store.Query(ctx, collections[0], first.Embedding.Values, 5)
	if err != nil {
		color.Red("Query failed: %v", err)
		os.Exit(1)
	}
	color.Green("OK: %d match(es)", len(matches))
	for i, m := range matches {
		color.White("  [%d] similarity=%.3f source=%s", i+1, 1-m.Distance, m.Source)
	}
}
