package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawgpt-backend/models"
	"lawgpt-backend/pipeline"
)

type fakeCaseSearcher struct {
	hits      []models.ScoredPoint
	err       error
	calls     int
	lastQuery string
	lastLimit uint64
}

func (f *fakeCaseSearcher) SearchByText(_ context.Context, query string, limit uint64) ([]models.ScoredPoint, error) {
	f.calls++
	f.lastQuery = query
	f.lastLimit = limit
	return f.hits, f.err
}

type fakeLawSearcher struct {
	results   []pipeline.LawSearchResult
	err       error
	calls     int
	lastLimit uint64
}

func (f *fakeLawSearcher) SearchByText(_ context.Context, query string, limit uint64) ([]pipeline.LawSearchResult, error) {
	f.calls++
	f.lastLimit = limit
	return f.results, f.err
}

type fakeGenerator struct {
	response   string
	err        error
	gotInput   string
	gotContext []models.RetrievalResult
}

func (f *fakeGenerator) Generate(_ context.Context, userInput string, ragContext []models.RetrievalResult) (string, error) {
	f.gotInput = userInput
	f.gotContext = ragContext
	return f.response, f.err
}

func caseHit(id uint64, score float32) models.ScoredPoint {
	return models.ScoredPoint{
		ID:    id,
		Score: score,
		Payload: map[string]interface{}{
			"case_title":   "State vs Rahman",
			"division":     "Appellate Division",
			"law_category": "Criminal",
			"law_act":      "Penal Code 1860",
			"reference":    "45 DLR 12",
			"case_details": "Appeal against conviction.",
		},
	}
}

func lawResult(id uint64, score float32) pipeline.LawSearchResult {
	return pipeline.LawSearchResult{
		Type:    models.ResultTypeLaw,
		Content: "chunk text",
		Score:   score,
		ID:      id,
		Payload: map[string]interface{}{
			"part_section": "Part II, Section 7",
			"law_text":     "Whoever contravenes this section commits an offence.",
			"chunk_index":  int64(1),
			"total_chunks": int64(3),
			"is_chunked":   true,
		},
	}
}

func TestRetrieveContext_MergesCaseThenLaw(t *testing.T) {
	cases := &fakeCaseSearcher{hits: []models.ScoredPoint{caseHit(1, 0.9), caseHit(2, 0.8)}}
	laws := &fakeLawSearcher{results: []pipeline.LawSearchResult{lawResult(7, 0.7)}}
	svc := NewChatService(ChatWithCaseSearcher(cases), ChatWithLawSearcher(laws))

	got := svc.RetrieveContext(context.Background(), "appeal against conviction", true, true)
	require.Len(t, got, 3)

	assert.Equal(t, models.ResultTypeCase, got[0].Type)
	assert.Equal(t, models.ResultTypeCase, got[1].Type)
	assert.Equal(t, models.ResultTypeLaw, got[2].Type)

	assert.Equal(t,
		"Case Title: State vs Rahman\nDivision: Appellate Division\nLaw Category: Criminal\nLaw Act: Penal Code 1860\nReference: 45 DLR 12\nCase Details: Appeal against conviction.",
		got[0].Content)
	// Law context carries the full section text, not the matched chunk.
	assert.Equal(t,
		"Part Section: Part II, Section 7\nLaw Text: Whoever contravenes this section commits an offence.\nIs Chunked: true\nChunk Index: 1 of 3",
		got[2].Content)

	assert.Equal(t, "appeal against conviction", cases.lastQuery)
	assert.Equal(t, uint64(3), cases.lastLimit)
	assert.Equal(t, uint64(3), laws.lastLimit)
}

func TestRetrieveContext_LawFailureKeepsCaseResults(t *testing.T) {
	cases := &fakeCaseSearcher{hits: []models.ScoredPoint{caseHit(1, 0.9)}}
	laws := &fakeLawSearcher{err: errors.New("collection offline")}
	svc := NewChatService(ChatWithCaseSearcher(cases), ChatWithLawSearcher(laws))

	got := svc.RetrieveContext(context.Background(), "q", true, true)
	require.Len(t, got, 1)
	assert.Equal(t, models.ResultTypeCase, got[0].Type)
}

func TestRetrieveContext_CaseFailureKeepsLawResults(t *testing.T) {
	cases := &fakeCaseSearcher{err: errors.New("collection offline")}
	laws := &fakeLawSearcher{results: []pipeline.LawSearchResult{lawResult(7, 0.7)}}
	svc := NewChatService(ChatWithCaseSearcher(cases), ChatWithLawSearcher(laws))

	got := svc.RetrieveContext(context.Background(), "q", true, true)
	require.Len(t, got, 1)
	assert.Equal(t, models.ResultTypeLaw, got[0].Type)
}

func TestRetrieveContext_FlagsDisableSearches(t *testing.T) {
	cases := &fakeCaseSearcher{hits: []models.ScoredPoint{caseHit(1, 0.9)}}
	laws := &fakeLawSearcher{results: []pipeline.LawSearchResult{lawResult(7, 0.7)}}
	svc := NewChatService(ChatWithCaseSearcher(cases), ChatWithLawSearcher(laws))

	got := svc.RetrieveContext(context.Background(), "q", false, false)
	assert.Empty(t, got)
	assert.Zero(t, cases.calls)
	assert.Zero(t, laws.calls)
}

func TestRetrieveContext_MissingSearcherDegrades(t *testing.T) {
	laws := &fakeLawSearcher{results: []pipeline.LawSearchResult{lawResult(7, 0.7)}}
	svc := NewChatService(ChatWithLawSearcher(laws))

	got := svc.RetrieveContext(context.Background(), "q", true, true)
	require.Len(t, got, 1)
	assert.Equal(t, models.ResultTypeLaw, got[0].Type)
}

func TestChat_UnknownModelIsError(t *testing.T) {
	svc := NewChatService(ChatWithGenerator(ModelGemini, &fakeGenerator{response: "ok"}))

	_, err := svc.Chat(context.Background(), ChatRequest{Message: "q", ModelID: "llama"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedModel))
	assert.Contains(t, err.Error(), "llama")
}

func TestChat_GenerationErrorBecomesApology(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exhausted")}
	svc := NewChatService(ChatWithGenerator(ModelOpenAI, gen))

	result, err := svc.Chat(context.Background(), ChatRequest{Message: "q", ModelID: ModelOpenAI})
	require.NoError(t, err, "generation failures degrade into the response, not the error")
	assert.Contains(t, result.Response, "I apologize, but I encountered an error while processing your request:")
	assert.Contains(t, result.Response, "quota exhausted")
}

func TestChat_PassesMessageAndContextToGenerator(t *testing.T) {
	cases := &fakeCaseSearcher{hits: []models.ScoredPoint{caseHit(1, 0.9)}}
	gen := &fakeGenerator{response: "Here is my answer."}
	svc := NewChatService(ChatWithCaseSearcher(cases), ChatWithGenerator(ModelGemini, gen))

	result, err := svc.Chat(context.Background(), ChatRequest{
		Message:    "What did the court hold?",
		ModelID:    ModelGemini,
		UseCaseRAG: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Here is my answer.", result.Response)
	assert.Equal(t, "What did the court hold?", gen.gotInput)
	require.Len(t, gen.gotContext, 1)
	assert.Equal(t, models.ResultTypeCase, gen.gotContext[0].Type)
}

func TestContextText(t *testing.T) {
	t.Run("empty context renders nothing", func(t *testing.T) {
		assert.Equal(t, "", ContextText(nil))
		assert.Equal(t, "", ContextText([]models.RetrievalResult{}))
	})

	t.Run("items render under one header", func(t *testing.T) {
		items := []models.RetrievalResult{
			{Type: models.ResultTypeCase, Content: "case block"},
			{Type: models.ResultTypeLaw, Content: "law block"},
		}
		assert.Equal(t, "\n\nRelevant Context:\nLegal Case: case block\nLaw Reference: law block", ContextText(items))
	})

	t.Run("unknown types are dropped", func(t *testing.T) {
		items := []models.RetrievalResult{{Type: "memo", Content: "x"}}
		assert.Equal(t, "", ContextText(items))
	})
}

func TestCaseContextBlock_MissingFieldsRenderEmpty(t *testing.T) {
	block := caseContextBlock(map[string]interface{}{"case_title": "State vs Karim"})
	assert.Contains(t, block, "Case Title: State vs Karim")
	assert.Contains(t, block, "Division: \n")
	assert.Contains(t, block, "Case Details: ")
}

func TestLawContextBlock_DefaultsForLegacyPayload(t *testing.T) {
	block := lawContextBlock(map[string]interface{}{
		"part_section": "Part I, Section 2",
		"law_text":     "legacy text",
	})
	assert.Equal(t, "Part Section: Part I, Section 2\nLaw Text: legacy text\nIs Chunked: false\nChunk Index: 0 of 1", block)
}
