package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
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

// casesFileName lives alongside the law files in the data directory and
// must never be ingested as statute text.
const casesFileName = "bd_legal_cases_complete.json"

func main() {
	fileList := flag.String("files", "", "comma-separated law files to upload (overrides -dir discovery)")
	dataDir := flag.String("dir", "data", "directory to discover law JSON files in")
	batchSize := flag.Int("batch", pipeline.DefaultBatchSize, "references per upload batch")
	resume := flag.String("resume", "", "resume point as file.json:index")
	strict := flag.Bool("strict", false, "abort when point IDs cannot be seeded from the live count")
	verify := flag.Bool("verify", false, "run a smoke search after the upload")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	resumeFile, resumeIndex := parseResume(*resume)

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
	lawPipeline := pipeline.NewLawPipeline(embedder, store, source, cfg.LawsCollection)

	ctx := context.Background()
	runID := uuid.New().String()[:8]

	files, err := resolveFiles(*fileList, *dataDir)
	if err != nil {
		log.Fatalf("Failed to locate law files: %v", err)
	}

	log.Printf("🚀 Starting law references upload to Qdrant (run %s)...", runID)
	log.Printf("📁 Files to process: %d", len(files))

	if err := lawPipeline.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure collection %s: %v", cfg.LawsCollection, err)
	}

	info, err := lawPipeline.GetCollectionInfo(ctx)
	if err != nil {
		log.Fatalf("Failed to get collection info: %v", err)
	}
	log.Printf("📊 Collection '%s' status: %s", info.Name, info.Status)
	log.Printf("📈 Current vectors count: %d", info.VectorsCount)

	totalRefs := 0
	for _, path := range files {
		count, err := countLaws(ctx, source, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("Warning: %s not found, it will be skipped", path)
				continue
			}
			log.Fatalf("Failed to analyze %s: %v", path, err)
		}
		log.Printf("📋 %s: %d law references", filepath.Base(path), count)
		totalRefs += count
	}
	log.Printf("📊 Found %d law references across %d files", totalRefs, len(files))

	if info.VectorsCount > 0 && !*yes && resumeFile == "" {
		prompt := fmt.Sprintf("⚠️  Collection already contains %d vectors. Continue adding %d more references? (y/N): ", info.VectorsCount, totalRefs)
		if !confirm(prompt) {
			log.Println("❌ Upload cancelled by user.")
			return
		}
	}

	if resumeFile != "" {
		log.Printf("🔄 Resuming upload from %s at reference %d...", resumeFile, resumeIndex)
	} else {
		log.Printf("🔄 Starting upload of %d law references...", totalRefs)
	}
	log.Println("⏳ This may take a while for large datasets...")

	started := time.Now()
	stats, err := lawPipeline.AddMultipleLawFiles(ctx, pipeline.AddLawFilesRequest{
		FilePaths:   files,
		BatchSize:   *batchSize,
		StrictIDs:   *strict,
		ResumeFile:  resumeFile,
		ResumeIndex: resumeIndex,
		Verbose:     true,
	})
	elapsed := time.Since(started)
	if err != nil {
		log.Printf("❌ Upload failed after %.2f seconds: %v", elapsed.Seconds(), err)
		log.Printf("💡 To resume from the failed file, try: -resume <file>.json:<index>")
		os.Exit(1)
	}

	log.Println("✅ Upload completed successfully!")
	log.Printf("📦 Uploaded %d chunks from %d law references", stats.Uploaded, totalRefs)
	if stats.Skipped > 0 {
		log.Printf("⚠️  Skipped %d chunks", stats.Skipped)
	}
	log.Printf("⏱️  Time taken: %.2f seconds", elapsed.Seconds())
	if secs := elapsed.Seconds(); secs > 0 && totalRefs > 0 {
		log.Printf("⚡ Processing rate: %.1f references/second", float64(totalRefs)/secs)
	}

	if updated, err := lawPipeline.GetCollectionInfo(ctx); err == nil {
		log.Printf("📈 Total vectors in collection: %d", updated.VectorsCount)
		log.Printf("📊 Total points in collection: %d", updated.PointsCount)
	}

	if *verify {
		smokeSearch(ctx, lawPipeline)
	}
}

// resolveFiles returns the explicit -files list, or discovers law JSON
// files under dir. Discovery walks the local filesystem only; object
// storage runs must pass -files explicitly.
func resolveFiles(fileList, dir string) ([]string, error) {
	if fileList != "" {
		var files []string
		for _, f := range strings.Split(fileList, ",") {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no usable paths in -files %q", fileList)
		}
		return files, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, m := range matches {
		if filepath.Base(m) == casesFileName {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no law JSON files found in %s", dir)
	}
	return files, nil
}

func parseResume(s string) (string, int) {
	if s == "" {
		return "", 0
	}
	idx := strings.LastIndex(s, ":")
	if idx == -1 {
		return s, 0
	}
	file := s[:idx]
	n, err := strconv.Atoi(s[idx+1:])
	if err != nil || n < 0 || file == "" {
		log.Fatalf("Invalid -resume format %q, use file.json:index", s)
	}
	return file, n
}

func countLaws(ctx context.Context, source storage.Source, path string) (int, error) {
	rc, err := source.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	var laws []models.LawRecord
	if err := json.NewDecoder(rc).Decode(&laws); err != nil {
		return 0, err
	}
	return len(laws), nil
}

func smokeSearch(ctx context.Context, p *pipeline.LawPipeline) {
	log.Println("🔍 Testing search functionality...")
	results, err := p.SearchByText(ctx, "consumer protection", 2)
	if err != nil {
		log.Printf("⚠️  Search test failed: %v", err)
		return
	}
	if len(results) == 0 {
		log.Println("⚠️  Search test returned no results.")
		return
	}
	log.Printf("✅ Search test successful! Found %d results.", len(results))
	top := results[0]
	label := truncate(top.Metadata.PartSection, 80)
	if top.Metadata.IsChunked {
		log.Printf("🎯 Top result: %s... (chunk %d/%d)", label, top.Metadata.ChunkIndex+1, top.Metadata.TotalChunks)
	} else {
		log.Printf("🎯 Top result: %s...", label)
	}
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
