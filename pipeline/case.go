package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"lawgpt-backend/embedding"
	"lawgpt-backend/models"
)

// CasePipeline ingests decided legal cases and serves similarity search
// over them. Each case record becomes exactly one point whose ID is the
// record's index in the source file.
type CasePipeline struct {
	embedder   Embedder
	store      VectorStore
	source     Source
	collection string
}

// NewCasePipeline creates a case pipeline over the named collection.
func NewCasePipeline(embedder Embedder, store VectorStore, source Source, collection string) *CasePipeline {
	return &CasePipeline{
		embedder:   embedder,
		store:      store,
		source:     source,
		collection: collection,
	}
}

// Collection returns the collection name the pipeline writes to.
func (p *CasePipeline) Collection() string {
	return p.collection
}

// EnsureCollection creates the case collection if it does not exist yet.
// Nothing downstream can succeed without it, so callers should treat a
// failure here as fatal.
func (p *CasePipeline) EnsureCollection(ctx context.Context) error {
	return p.store.EnsureCollection(ctx, p.collection, embedding.VectorSize)
}

// AddCasesRequest configures one case ingestion run.
type AddCasesRequest struct {
	// FilePath locates a JSON array of case records.
	FilePath string
	// BatchSize is the number of cases per upload; zero means DefaultBatchSize.
	BatchSize int
	// StartIndex resumes an interrupted run at the given record index.
	// Negative values are treated as zero.
	StartIndex int
	// OnError defaults to AbortOnError: one failed case aborts the run.
	OnError ErrorPolicy
	// Verbose enables per-batch progress logging.
	Verbose bool
}

// AddCases reads case records from the source file and uploads them in
// batches. Point ID equals record index, so re-running over the same file
// overwrites the same points. Batches already uploaded before a failure
// stay in the index; ingestion is not transactional.
func (p *CasePipeline) AddCases(ctx context.Context, req AddCasesRequest) (UploadStats, error) {
	if req.BatchSize <= 0 {
		req.BatchSize = DefaultBatchSize
	}
	if req.StartIndex < 0 {
		req.StartIndex = 0
	}
	if req.OnError == "" {
		req.OnError = AbortOnError
	}

	var stats UploadStats

	cases, err := p.readCases(ctx, req.FilePath)
	if err != nil {
		return stats, err
	}
	total := len(cases)

	if req.StartIndex >= total {
		if req.Verbose {
			log.Printf("ℹ️ Start index %d is beyond total cases (%d). Nothing to do.", req.StartIndex, total)
		}
		return stats, nil
	}

	if req.Verbose {
		if req.StartIndex > 0 {
			log.Printf("📋 Resuming processing from case %d of %d in batches of %d", req.StartIndex+1, total, req.BatchSize)
		} else {
			log.Printf("📋 Processing %d cases in batches of %d", total, req.BatchSize)
		}
	}

	totalBatches := (total + req.BatchSize - 1) / req.BatchSize
	for batchStart := req.StartIndex; batchStart < total; batchStart += req.BatchSize {
		batchEnd := batchStart + req.BatchSize
		if batchEnd > total {
			batchEnd = total
		}
		batch := cases[batchStart:batchEnd]

		if req.Verbose {
			log.Printf("🔄 Processing batch %d/%d (cases %d-%d)", batchStart/req.BatchSize+1, totalBatches, batchStart+1, batchEnd)
		}

		points := make([]models.IndexPoint, 0, len(batch))
		for idx, rec := range batch {
			caseID := batchStart + idx

			if req.Verbose && (idx+1)%10 == 0 {
				log.Printf("  📝 Embedding case %d: %s...", caseID+1, firstRunes(rec.CaseTitle, 60))
			}

			vector, err := p.embedder.EmbedDocument(ctx, rec.EmbeddingText())
			if err != nil {
				if req.OnError == SkipAndContinue {
					log.Printf("Warning: skipping case %d (%s): %v", caseID, firstRunes(rec.CaseTitle, 60), err)
					stats.Skipped++
					continue
				}
				return stats, fmt.Errorf("failed to embed case %d: %w", caseID, err)
			}

			points = append(points, models.IndexPoint{
				ID:      uint64(caseID),
				Vector:  vector,
				Payload: rec.Payload(),
			})
		}

		if len(points) > 0 {
			if req.Verbose {
				log.Printf("  💾 Uploading batch to Qdrant...")
			}
			if err := p.store.UpsertPoints(ctx, p.collection, points); err != nil {
				return stats, fmt.Errorf("failed to upload batch starting at case %d: %w", batchStart, err)
			}
			stats.Uploaded += len(points)
		}

		if req.Verbose {
			log.Printf("  ✅ Batch uploaded! Progress: %d/%d (%.1f%%)", batchEnd, total, float64(batchEnd)/float64(total)*100)
		}
	}

	if req.Verbose {
		log.Printf("🎉 All %d cases uploaded successfully!", stats.Uploaded)
	}
	return stats, nil
}

// SearchByText embeds the query and returns the closest case points, best
// score first. The index's own ordering is not trusted; results are
// re-sorted descending before they are returned.
func (p *CasePipeline) SearchByText(ctx context.Context, query string, limit uint64) ([]models.ScoredPoint, error) {
	if limit == 0 {
		limit = DefaultSearchLimit
	}

	vector, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := p.store.Search(ctx, p.collection, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", p.collection, err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits, nil
}

// GetCollectionInfo reports live stats for the case collection.
func (p *CasePipeline) GetCollectionInfo(ctx context.Context) (models.CollectionInfo, error) {
	return p.store.GetCollectionInfo(ctx, p.collection)
}

// DeleteCollection drops the case collection and everything in it.
func (p *CasePipeline) DeleteCollection(ctx context.Context) error {
	return p.store.DeleteCollection(ctx, p.collection)
}

func (p *CasePipeline) readCases(ctx context.Context, path string) ([]models.CaseRecord, error) {
	rc, err := p.source.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	var cases []models.CaseRecord
	if err := json.NewDecoder(rc).Decode(&cases); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cases, nil
}
