package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"lawgpt-backend/config"
	"lawgpt-backend/embedding"
	"lawgpt-backend/vectorstore"
)

func main() {
	collection := flag.String("collection", "all", "which collection to reset: cases, laws, or all")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	targets := resolveTargets(*collection, cfg)

	store, err := vectorstore.NewStore(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey, cfg.QdrantUseTLS)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	exists := make(map[string]bool, len(targets))
	for _, name := range targets {
		info, err := store.GetCollectionInfo(ctx, name)
		if err != nil {
			log.Printf("Warning: could not read stats for %s (it may not exist yet): %v", name, err)
			continue
		}
		exists[name] = true
		log.Printf("📊 Collection '%s': status %s, %d points, %d vectors", info.Name, info.Status, info.PointsCount, info.VectorsCount)
	}

	if !*yes {
		fmt.Printf("⚠️  This permanently deletes all vectors in: %s\n", strings.Join(targets, ", "))
		fmt.Print("Type DELETE to confirm: ")
		response, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil || strings.TrimSpace(response) != "DELETE" {
			log.Println("❌ Reset cancelled.")
			return
		}
	}

	for _, name := range targets {
		if exists[name] {
			if err := store.DeleteCollection(ctx, name); err != nil {
				log.Fatalf("Failed to delete collection %s: %v", name, err)
			}
			log.Printf("✓ Deleted collection %s", name)
		}

		if err := store.EnsureCollection(ctx, name, embedding.VectorSize); err != nil {
			log.Fatalf("Failed to create collection %s: %v", name, err)
		}
		log.Printf("✓ Created empty collection %s (vector size %d)", name, embedding.VectorSize)
	}

	fmt.Println("\nReset complete!")
	fmt.Printf("Recreated %d collection(s): %s\n", len(targets), strings.Join(targets, ", "))
}

func resolveTargets(collection string, cfg *config.Config) []string {
	switch collection {
	case "cases":
		return []string{cfg.CasesCollection}
	case "laws":
		return []string{cfg.LawsCollection}
	case "all":
		return []string{cfg.CasesCollection, cfg.LawsCollection}
	default:
		log.Fatalf("Invalid -collection %q, use cases, laws, or all", collection)
		return nil
	}
}
