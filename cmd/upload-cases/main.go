package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"lawgpt-backend/config"
	"lawgpt-backend/embedding"
	"lawgpt-backend/models"
	"lawgpt-backend/pipeline"
	"lawgpt-backend/storage"
	"lawgpt-backend/vectorstore"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

func main() {
	filePath := flag.String("file", "data/bd_legal_cases_complete.json", "JSON file with case records")
	batchSize := flag.Int("batch", pipeline.DefaultBatchSize, "cases per upload batch")
	startIndex := flag.Int("start", 0, "0-based case index to resume from")
	verify := flag.Bool("verify", false, "run a smoke search after the upload")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	geminiClient, err := initGemini(cfg.GoogleAPIKey)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}

	store, err := vectorstore.NewStore(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey, cfg.QdrantUseTLS)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer store.Close()

	source, err := storage.NewSourceFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	embedder := embedding.NewGeminiEmbedder(geminiClient)
	casePipeline := pipeline.NewCasePipeline(embedder, store, source, cfg.CasesCollection)

	ctx := context.Background()
	runID := uuid.New().String()[:8]

	log.Printf("🚀 Starting legal cases upload to Qdrant (run %s)...", runID)
	log.Printf("📁 Source file: %s", *filePath)

	if err := casePipeline.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure collection %s: %v", cfg.CasesCollection, err)
	}

	info, err := casePipeline.GetCollectionInfo(ctx)
	if err != nil {
		log.Fatalf("Failed to get collection info: %v", err)
	}
	log.Printf("📊 Collection '%s' status: %s", info.Name, info.Status)
	log.Printf("📈 Current vectors count: %d", info.VectorsCount)

	total, err := countCases(ctx, source, *filePath)
	if err != nil {
		log.Fatalf("Failed to analyze %s: %v", *filePath, err)
	}
	log.Printf("📊 Found %d legal cases to upload", total)

	if info.VectorsCount > 0 && !*yes {
		prompt := fmt.Sprintf("⚠️  Collection already contains %d vectors. Continue adding %d more? (y/N): ", info.VectorsCount, total)
		if !confirm(prompt) {
			log.Println("❌ Upload cancelled by user.")
			return
		}
	}

	if *startIndex > 0 {
		log.Printf("🔄 Resuming upload from case %d of %d...", *startIndex+1, total)
	} else {
		log.Printf("🔄 Starting upload of %d cases...", total)
	}
	log.Println("⏳ This may take a while for large datasets...")

	started := time.Now()
	stats, err := casePipeline.AddCases(ctx, pipeline.AddCasesRequest{
		FilePath:   *filePath,
		BatchSize:  *batchSize,
		StartIndex: *startIndex,
		Verbose:    true,
	})
	elapsed := time.Since(started)
	if err != nil {
		log.Printf("❌ Upload failed after %.2f seconds: %v", elapsed.Seconds(), err)
		log.Printf("💡 To resume, try: -start %d", *startIndex+stats.Uploaded)
		os.Exit(1)
	}

	log.Println("✅ Upload completed successfully!")
	log.Printf("⏱️  Time taken: %.2f seconds", elapsed.Seconds())
	if secs := elapsed.Seconds(); secs > 0 && stats.Uploaded > 0 {
		log.Printf("⚡ Processing rate: %.1f cases/second", float64(stats.Uploaded)/secs)
	}

	if updated, err := casePipeline.GetCollectionInfo(ctx); err == nil {
		log.Printf("📈 Total vectors in collection: %d", updated.VectorsCount)
		log.Printf("📊 Total points in collection: %d", updated.PointsCount)
	}

	if *verify {
		smokeSearch(ctx, casePipeline)
	}
}

func countCases(ctx context.Context, source storage.Source, path string) (int, error) {
	rc, err := source.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	var cases []models.CaseRecord
	if err := json.NewDecoder(rc).Decode(&cases); err != nil {
		return 0, err
	}
	return len(cases), nil
}

func smokeSearch(ctx context.Context, p *pipeline.CasePipeline) {
	log.Println("🔍 Testing search functionality...")
	results, err := p.SearchByText(ctx, "administrative tribunal", 2)
	if err != nil {
		log.Printf("⚠️  Search test failed: %v", err)
		return
	}
	if len(results) == 0 {
		log.Println("⚠️  Search test returned no results.")
		return
	}
	log.Printf("✅ Search test successful! Found %d results.", len(results))
	log.Printf("🎯 Top result: %s...", truncate(models.PayloadString(results[0].Payload, "case_title"), 80))
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func initGemini(apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		log.Println("Warning: GOOGLE_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
