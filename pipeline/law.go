package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"

	"lawgpt-backend/chunker"
	"lawgpt-backend/embedding"
	"lawgpt-backend/models"
)

// LawPipeline ingests statute text and serves similarity search over it.
// Records are chunked before embedding, so one record can become several
// points, and point IDs advance per chunk rather than per record.
type LawPipeline struct {
	embedder   Embedder
	store      VectorStore
	source     Source
	splitter   *chunker.RecursiveChunker
	collection string
}

// NewLawPipeline creates a law pipeline over the named collection with the
// default chunking parameters.
func NewLawPipeline(embedder Embedder, store VectorStore, source Source, collection string) *LawPipeline {
	return &LawPipeline{
		embedder:   embedder,
		store:      store,
		source:     source,
		splitter:   chunker.New(),
		collection: collection,
	}
}

// Collection returns the collection name the pipeline writes to.
func (p *LawPipeline) Collection() string {
	return p.collection
}

// EnsureCollection creates the law collection if it does not exist yet.
func (p *LawPipeline) EnsureCollection(ctx context.Context) error {
	return p.store.EnsureCollection(ctx, p.collection, embedding.VectorSize)
}

// AddLawsRequest configures one single-file law ingestion run.
type AddLawsRequest struct {
	// FilePath locates a JSON array of law records.
	FilePath string
	// BatchSize is the number of records per upload; zero means DefaultBatchSize.
	BatchSize int
	// StartIndex resumes an interrupted run at the given record index.
	// Negative values are treated as zero.
	StartIndex int
	// OnError defaults to SkipAndContinue: a failed chunk is counted and
	// dropped, keeping the rest of the batch.
	OnError ErrorPolicy
	// Verbose enables per-batch progress logging.
	Verbose bool
}

// AddLawReferences reads law records from one file, chunks them, and
// uploads one point per chunk. Point IDs restart at the batch's record
// index at the top of every batch, so a chunk-heavy batch can spill past
// the next batch's ID range and overwrite its points. Kept for
// compatibility with collections written by earlier ingestion runs; use
// AddMultipleLawFiles for count-seeded IDs.
func (p *LawPipeline) AddLawReferences(ctx context.Context, req AddLawsRequest) (UploadStats, error) {
	if req.BatchSize <= 0 {
		req.BatchSize = DefaultBatchSize
	}
	if req.StartIndex < 0 {
		req.StartIndex = 0
	}
	if req.OnError == "" {
		req.OnError = SkipAndContinue
	}

	stats, err := p.ingestFile(ctx, req.FilePath, req.BatchSize, req.StartIndex, req.OnError, req.Verbose, 0)
	if err != nil {
		return stats, err
	}
	if req.Verbose && stats.Uploaded > 0 {
		log.Printf("🎉 All %d chunks from law references uploaded successfully!", stats.Uploaded)
	}
	return stats, nil
}

// AddLawFilesRequest configures a multi-file law ingestion run.
type AddLawFilesRequest struct {
	FilePaths []string
	// BatchSize is the number of records per upload; zero means DefaultBatchSize.
	BatchSize int
	// OnError defaults to SkipAndContinue, as for single-file runs.
	OnError ErrorPolicy
	// StrictIDs aborts the run when the collection's point count cannot be
	// read, instead of falling back to estimated IDs that may overwrite
	// existing points.
	StrictIDs bool
	// ResumeFile names the file, by full path or base name, where an
	// interrupted run left off. Files before it are skipped without being
	// opened. Empty means start from the first file.
	ResumeFile string
	// ResumeIndex is the record index within ResumeFile to restart from.
	ResumeIndex int
	// Verbose enables per-batch progress logging.
	Verbose bool
}

// AddMultipleLawFiles ingests several law files in sequence, seeding each
// file's point IDs from the collection's live point count so chunk-heavy
// earlier files do not push later files onto used IDs. When the count
// cannot be read, the run falls back to an estimate: twice the file's
// record count, or a flat 100 if the file cannot be re-read either. The
// estimates can collide with existing IDs; StrictIDs turns both fallbacks
// into hard failures. Missing files are skipped, any other per-file
// failure aborts the run. ResumeFile restarts an interrupted run partway
// through the list, relying on the live count for ID continuity.
func (p *LawPipeline) AddMultipleLawFiles(ctx context.Context, req AddLawFilesRequest) (UploadStats, error) {
	if req.BatchSize <= 0 {
		req.BatchSize = DefaultBatchSize
	}
	if req.OnError == "" {
		req.OnError = SkipAndContinue
	}

	var stats UploadStats
	totalFiles := len(req.FilePaths)

	currentPointID := uint64(0)
	count, err := p.store.PointCount(ctx, p.collection)
	if err != nil {
		if req.StrictIDs {
			return stats, fmt.Errorf("failed to read point count before ingestion: %w", err)
		}
		log.Printf("Warning: could not read point count, starting from 0: %v", err)
		if req.Verbose {
			log.Printf("📊 Starting from point ID: 0 (new collection)")
		}
	} else {
		currentPointID = count
		if req.Verbose {
			log.Printf("📊 Starting from point ID: %d", currentPointID)
		}
	}

	skipping := req.ResumeFile != ""
	for fileIdx, path := range req.FilePaths {
		startIndex := 0
		if skipping {
			if path != req.ResumeFile && filepath.Base(path) != req.ResumeFile {
				if req.Verbose {
					log.Printf("⏭️ Skipping already processed file: %s", filepath.Base(path))
				}
				continue
			}
			skipping = false
			startIndex = req.ResumeIndex
		}

		if req.Verbose {
			log.Printf("📁 Processing file %d/%d: %s", fileIdx+1, totalFiles, filepath.Base(path))
		}

		fileStats, err := p.ingestFile(ctx, path, req.BatchSize, startIndex, req.OnError, req.Verbose, currentPointID)
		stats.Uploaded += fileStats.Uploaded
		stats.Skipped += fileStats.Skipped
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("Warning: file not found, skipping: %s", path)
				if req.Verbose {
					log.Printf("❌ File not found: %s", path)
				}
				continue
			}
			return stats, fmt.Errorf("failed to process file %s: %w", path, err)
		}

		// Re-seed the next file's IDs from the live count; chunking makes
		// the written point count unknowable from record counts alone.
		count, err := p.store.PointCount(ctx, p.collection)
		if err == nil {
			currentPointID = count
			continue
		}
		if req.StrictIDs {
			return stats, fmt.Errorf("failed to re-read point count after %s: %w", path, err)
		}
		log.Printf("Warning: could not update point ID after %s: %v", path, err)
		if laws, readErr := p.readLaws(ctx, path); readErr == nil {
			currentPointID += uint64(len(laws) * 2)
		} else {
			currentPointID += 100
		}
	}

	if skipping {
		return stats, fmt.Errorf("resume file %s is not in the file list", req.ResumeFile)
	}

	if req.Verbose {
		log.Printf("🎉 Successfully processed all %d law reference files!", totalFiles)
	}
	return stats, nil
}

// ingestFile is the shared batch loop behind both ingestion entry points.
// basePointID offsets every assigned ID; the single-file path passes zero
// and the multi-file path passes the collection's current point count.
func (p *LawPipeline) ingestFile(ctx context.Context, path string, batchSize, startIndex int, onError ErrorPolicy, verbose bool, basePointID uint64) (UploadStats, error) {
	var stats UploadStats

	laws, err := p.readLaws(ctx, path)
	if err != nil {
		return stats, err
	}
	total := len(laws)

	if startIndex >= total {
		if verbose {
			log.Printf("ℹ️ Start index %d is beyond total references (%d). Nothing to do.", startIndex, total)
		}
		return stats, nil
	}

	if verbose {
		if startIndex > 0 {
			log.Printf("📋 Resuming processing from reference %d of %d in batches of %d", startIndex+1, total, batchSize)
		} else {
			log.Printf("📋 Processing %d law references in batches of %d", total, batchSize)
		}
	}

	totalBatches := (total + batchSize - 1) / batchSize
	for batchStart := startIndex; batchStart < total; batchStart += batchSize {
		batchEnd := batchStart + batchSize
		if batchEnd > total {
			batchEnd = total
		}
		batch := laws[batchStart:batchEnd]

		if verbose {
			log.Printf("🔄 Processing batch %d/%d (references %d-%d)", batchStart/batchSize+1, totalBatches, batchStart+1, batchEnd)
		}

		// IDs restart from the batch's record index; only chunks advance
		// the counter within a batch.
		currentPointID := basePointID + uint64(batchStart)
		points := make([]models.IndexPoint, 0, len(batch))
		batchSkipped := 0

		for idx, rec := range batch {
			chunks := p.splitter.ChunkLaw(rec)
			section := firstRunes(rec.PartSection, 60)

			if verbose && (idx+1)%10 == 0 {
				log.Printf("  📝 Processing reference %d: %s... (%d chunks)", currentPointID+1, section, len(chunks))
			}

			for _, chunk := range chunks {
				vector, err := p.embedder.EmbedDocument(ctx, chunk.Content)
				if err != nil {
					if onError == SkipAndContinue {
						batchSkipped++
						log.Printf("Warning: skipping chunk %d/%d of '%s...': %v", chunk.ChunkIndex+1, chunk.TotalChunks, section, err)
						continue
					}
					return stats, fmt.Errorf("failed to embed chunk %d of %q: %w", chunk.ChunkIndex, rec.PartSection, err)
				}

				points = append(points, models.IndexPoint{
					ID:      currentPointID,
					Vector:  vector,
					Payload: chunk.Payload(rec.LawText),
				})
				currentPointID++
			}
		}

		if len(points) > 0 {
			if verbose {
				log.Printf("  💾 Uploading batch to Qdrant (%d points)...", len(points))
			}
			if err := p.store.UpsertPoints(ctx, p.collection, points); err != nil {
				return stats, fmt.Errorf("failed to upload batch starting at reference %d: %w", batchStart, err)
			}
			stats.Uploaded += len(points)
		} else if verbose {
			log.Printf("  ⚠️ No valid points in this batch (all %d items skipped)", len(batch))
		}
		stats.Skipped += batchSkipped

		if verbose {
			progress := float64(batchEnd) / float64(total) * 100
			if batchSkipped > 0 {
				log.Printf("  ✅ Batch processed! %d chunks uploaded, %d items skipped. Progress: %d/%d (%.1f%%)", len(points), batchSkipped, batchEnd, total, progress)
			} else {
				log.Printf("  ✅ Batch uploaded! %d chunks from %d law references. Progress: %d/%d (%.1f%%)", len(points), len(batch), batchEnd, total, progress)
			}
		}
	}

	return stats, nil
}

// LawResultMetadata describes where a law hit sits within its parent record.
type LawResultMetadata struct {
	PartSection string `json:"part_section"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
	IsChunked   bool   `json:"is_chunked"`
}

// LawSearchResult is one law hit. Content carries the stored chunk text,
// falling back to the full law text for points written before chunk
// content was stored.
type LawSearchResult struct {
	Type     models.ResultType      `json:"type"`
	Content  string                 `json:"content"`
	Metadata LawResultMetadata      `json:"metadata"`
	Score    float32                `json:"score"`
	ID       uint64                 `json:"id"`
	Payload  map[string]interface{} `json:"payload"`
}

// SearchByText embeds the query and returns the closest law chunks, best
// score first.
func (p *LawPipeline) SearchByText(ctx context.Context, query string, limit uint64) ([]LawSearchResult, error) {
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

	results := make([]LawSearchResult, 0, len(hits))
	for _, hit := range hits {
		content := models.PayloadString(hit.Payload, "chunk_content")
		if content == "" {
			content = models.PayloadString(hit.Payload, "law_text")
		}
		results = append(results, LawSearchResult{
			Type:    models.ResultTypeLaw,
			Content: content,
			Metadata: LawResultMetadata{
				PartSection: models.PayloadString(hit.Payload, "part_section"),
				ChunkIndex:  models.PayloadInt(hit.Payload, "chunk_index", 0),
				TotalChunks: models.PayloadInt(hit.Payload, "total_chunks", 1),
				IsChunked:   models.PayloadBool(hit.Payload, "is_chunked"),
			},
			Score:   hit.Score,
			ID:      hit.ID,
			Payload: hit.Payload,
		})
	}
	return results, nil
}

// GetCollectionInfo reports live stats for the law collection.
func (p *LawPipeline) GetCollectionInfo(ctx context.Context) (models.CollectionInfo, error) {
	return p.store.GetCollectionInfo(ctx, p.collection)
}

// DeleteCollection drops the law collection and everything in it.
func (p *LawPipeline) DeleteCollection(ctx context.Context) error {
	return p.store.DeleteCollection(ctx, p.collection)
}

func (p *LawPipeline) readLaws(ctx context.Context, path string) ([]models.LawRecord, error) {
	rc, err := p.source.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	var laws []models.LawRecord
	if err := json.NewDecoder(rc).Decode(&laws); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return laws, nil
}
