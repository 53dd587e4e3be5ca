// Package service holds the retrieval orchestration and answer generation
// for the chat API, plus the case summarizer. Services are wired with
// functional options and hold no per-request state; every chat turn is
// independent.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"lawgpt-backend/models"
	"lawgpt-backend/pipeline"
)

// Model IDs accepted in chat requests.
const (
	ModelGemini = "gemini"
	ModelOpenAI = "openai"
	ModelCustom = "custom_llm"
)

// Per-path retrieval limits for one chat turn.
const (
	caseResultLimit = 3
	lawResultLimit  = 3
)

var ErrUnsupportedModel = errors.New("unsupported model_id")

// CaseSearcher is the case retrieval surface the chat service depends on.
type CaseSearcher interface {
	SearchByText(ctx context.Context, query string, limit uint64) ([]models.ScoredPoint, error)
}

// LawSearcher is the law retrieval surface the chat service depends on.
type LawSearcher interface {
	SearchByText(ctx context.Context, query string, limit uint64) ([]pipeline.LawSearchResult, error)
}

// ChatService fans one user message out to the enabled retrieval paths,
// merges the results into a bounded context, and dispatches generation to
// the model named in the request.
type ChatService struct {
	cases      CaseSearcher
	laws       LawSearcher
	generators map[string]Generator
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithCaseSearcher sets the case retrieval backend
func ChatWithCaseSearcher(s CaseSearcher) ChatServiceOption {
	return func(c *ChatService) {
		c.cases = s
	}
}

// ChatWithLawSearcher sets the law retrieval backend
func ChatWithLawSearcher(s LawSearcher) ChatServiceOption {
	return func(c *ChatService) {
		c.laws = s
	}
}

// ChatWithGenerator registers a generator under a model ID
func ChatWithGenerator(modelID string, g Generator) ChatServiceOption {
	return func(c *ChatService) {
		c.generators[modelID] = g
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{
		generators: make(map[string]Generator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChatRequest represents one stateless chat turn
type ChatRequest struct {
	Message    string
	ModelID    string
	UseCaseRAG bool
	UseLawRAG  bool
}

// ChatResult represents the generated answer for a chat turn
type ChatResult struct {
	Response string
}

// Chat runs one turn: retrieve context per the request flags, then
// generate. An unknown model ID is an error for the HTTP layer to surface;
// a generation failure degrades into an apology in the normal response so
// the caller still gets a well-formed answer.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	gen, ok := s.generators[req.ModelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, req.ModelID)
	}

	ragContext := s.RetrieveContext(ctx, req.Message, req.UseCaseRAG, req.UseLawRAG)

	answer, err := gen.Generate(ctx, req.Message, ragContext)
	if err != nil {
		log.Printf("Warning: generation failed for model %s: %v", req.ModelID, err)
		return &ChatResult{
			Response: fmt.Sprintf("I apologize, but I encountered an error while processing your request: %v", err),
		}, nil
	}

	return &ChatResult{Response: answer}, nil
}

// RetrieveContext runs the enabled searches and merges their hits into one
// ordered list: case results first, then law results, each group in
// descending score order. Either path failing degrades to contributing
// nothing; a law search failure must not cost the caller its case results.
func (s *ChatService) RetrieveContext(ctx context.Context, message string, useCaseRAG, useLawRAG bool) []models.RetrievalResult {
	ragContext := make([]models.RetrievalResult, 0, caseResultLimit+lawResultLimit)
	if useCaseRAG {
		ragContext = append(ragContext, s.caseResults(ctx, message)...)
	}
	if useLawRAG {
		ragContext = append(ragContext, s.lawResults(ctx, message)...)
	}
	return ragContext
}

func (s *ChatService) caseResults(ctx context.Context, message string) []models.RetrievalResult {
	if s.cases == nil {
		log.Printf("Warning: case retrieval requested but no case searcher configured")
		return nil
	}
	hits, err := s.cases.SearchByText(ctx, message, caseResultLimit)
	if err != nil {
		log.Printf("Warning: Failed to retrieve case context: %v. Continuing without case results.", err)
		return nil
	}

	results := make([]models.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.RetrievalResult{
			Type:    models.ResultTypeCase,
			Content: caseContextBlock(hit.Payload),
			Score:   hit.Score,
			ID:      hit.ID,
		})
	}
	return results
}

func (s *ChatService) lawResults(ctx context.Context, message string) []models.RetrievalResult {
	if s.laws == nil {
		log.Printf("Warning: law retrieval requested but no law searcher configured")
		return nil
	}
	hits, err := s.laws.SearchByText(ctx, message, lawResultLimit)
	if err != nil {
		log.Printf("Warning: Failed to retrieve law context: %v. Continuing without law results.", err)
		return nil
	}

	results := make([]models.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.RetrievalResult{
			Type:    models.ResultTypeLaw,
			Content: lawContextBlock(hit.Payload),
			Score:   hit.Score,
			ID:      hit.ID,
		})
	}
	return results
}

// caseContextBlock formats one case hit for the prompt context.
func caseContextBlock(payload map[string]interface{}) string {
	return fmt.Sprintf("Case Title: %s\nDivision: %s\nLaw Category: %s\nLaw Act: %s\nReference: %s\nCase Details: %s",
		models.PayloadString(payload, "case_title"),
		models.PayloadString(payload, "division"),
		models.PayloadString(payload, "law_category"),
		models.PayloadString(payload, "law_act"),
		models.PayloadString(payload, "reference"),
		models.PayloadString(payload, "case_details"))
}

// lawContextBlock formats one law hit for the prompt context. The full
// parent law text goes into the prompt, not the stored chunk, so the model
// sees the whole section even when a single chunk matched.
func lawContextBlock(payload map[string]interface{}) string {
	return fmt.Sprintf("Part Section: %s\nLaw Text: %s\nIs Chunked: %t\nChunk Index: %d of %d",
		models.PayloadString(payload, "part_section"),
		models.PayloadString(payload, "law_text"),
		models.PayloadBool(payload, "is_chunked"),
		models.PayloadInt(payload, "chunk_index", 0),
		models.PayloadInt(payload, "total_chunks", 1))
}
