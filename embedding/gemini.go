// Package embedding generates dense vectors for legal text through the
// Gemini embedding API.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

const (
	// DefaultModel is the Gemini embedding model used for both corpora.
	DefaultModel = "gemini-embedding-001"
	// VectorSize is the dimensionality DefaultModel produces.
	VectorSize = 3072

	maxRetries     = 3
	initialBackoff = time.Second
)

var (
	// ErrEmbeddingFailed is returned when every retry attempt is exhausted.
	ErrEmbeddingFailed = errors.New("failed to generate embedding")
	// ErrEmptyEmbedding is returned when the API answers without vector values.
	ErrEmptyEmbedding = errors.New("embedding response contained no values")
)

// GeminiEmbedder embeds documents and queries with task-specific hints so
// indexed text and search text land in compatible regions of the space.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder backed by the given Gemini client.
func NewGeminiEmbedder(client *genai.Client) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: DefaultModel}
}

// EmbedDocument embeds corpus text for indexing.
func (e *GeminiEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, genai.TaskTypeRetrievalDocument)
}

// EmbedQuery embeds a user query for retrieval.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, genai.TaskTypeRetrievalQuery)
}

func (e *GeminiEmbedder) embed(ctx context.Context, text string, task genai.TaskType) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = task

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			// Don't retry on invalid input or bad credentials
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusUnauthorized) {
				return nil, fmt.Errorf("embedding API error: %w", err)
			}
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if res.Embedding == nil || len(res.Embedding.Values) == 0 {
			if attempt == maxRetries-1 {
				return nil, ErrEmptyEmbedding
			}
			continue
		}
		return res.Embedding.Values, nil
	}

	return nil, ErrEmbeddingFailed
}
