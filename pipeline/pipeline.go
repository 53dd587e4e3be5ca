// Package pipeline implements batch ingestion and similarity search for the
// two legal corpora: decided cases and statute text. Both pipelines share
// the same collection lifecycle and differ in how records become points:
// one point per case, one point per law chunk.
package pipeline

import (
	"context"
	"io"

	"lawgpt-backend/models"
)

const (
	// DefaultBatchSize is the number of source records per upload batch.
	DefaultBatchSize = 50
	// DefaultSearchLimit is used when a caller does not request a limit.
	DefaultSearchLimit = 5
)

// ErrorPolicy selects how an ingestion run treats a failed record or chunk.
// Upload failures abort the run under either policy.
type ErrorPolicy string

const (
	// AbortOnError stops the run at the first failed record or chunk.
	AbortOnError ErrorPolicy = "abort"
	// SkipAndContinue drops the failing record or chunk, counts it, and
	// carries on with the rest of the batch.
	SkipAndContinue ErrorPolicy = "skip"
)

// UploadStats reports what an ingestion run wrote. Uploaded counts points,
// which for law ingestion is chunks rather than source records.
type UploadStats struct {
	Uploaded int `json:"uploaded"`
	Skipped  int `json:"skipped"`
}

// Embedder produces dense vectors for indexing and search.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the slice of the vector database surface the pipelines use.
type VectorStore interface {
	EnsureCollection(ctx context.Context, name string, vectorSize uint64) error
	UpsertPoints(ctx context.Context, collection string, points []models.IndexPoint) error
	Search(ctx context.Context, collection string, vector []float32, limit uint64) ([]models.ScoredPoint, error)
	PointCount(ctx context.Context, name string) (uint64, error)
	GetCollectionInfo(ctx context.Context, name string) (models.CollectionInfo, error)
	DeleteCollection(ctx context.Context, name string) error
}

// Source opens batch files by path. Implementations must return an error
// satisfying errors.Is(err, fs.ErrNotExist) when the path does not exist,
// so multi-file runs can skip missing files instead of aborting.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// firstRunes returns at most n leading runes of s, for progress logging of
// section names that may be long Bangla strings.
func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
