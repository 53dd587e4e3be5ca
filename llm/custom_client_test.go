package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawgpt-backend/models"
)

type capturedRequest struct {
	body    map[string]json.RawMessage
	headers http.Header
}

func inferenceServer(t *testing.T, status int, responseBody string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			captured.headers = r.Header.Clone()
			require.NoError(t, json.Unmarshal(raw, &captured.body))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
}

func ragItems() []models.RetrievalResult {
	return []models.RetrievalResult{
		{Type: models.ResultTypeCase, Content: "case block"},
	}
}

func decodeString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestGenerate_SendsWirePayload(t *testing.T) {
	var captured capturedRequest
	srv := inferenceServer(t, http.StatusOK, `{"response": "answer text", "model_name": "bd-llm-v1", "inference_time": 1.25}`, &captured)
	defer srv.Close()

	client := NewCustomClient(srv.URL, "secret-key", "custom system prompt")
	got, err := client.Generate(context.Background(), "What is the penalty?", ragItems())
	require.NoError(t, err)
	assert.Equal(t, "answer text", got)

	wantContext := "\n\nRelevant Context:\nLegal Case: case block"
	assert.Equal(t, "What is the penalty?"+wantContext, decodeString(t, captured.body["user_prompt"]))
	assert.Equal(t, "custom system prompt", decodeString(t, captured.body["system_prompt"]))
	assert.Equal(t, wantContext, decodeString(t, captured.body["rag_context"]))
	assert.Equal(t, "[]", string(captured.body["chat_history"]), "history is always an empty array, never null")
	assert.Equal(t, "2048", string(captured.body["max_new_tokens"]))

	assert.Equal(t, "application/json", captured.headers.Get("Content-Type"))
	assert.Equal(t, "Bearer secret-key", captured.headers.Get("Authorization"))
}

func TestGenerate_NoContextLeavesPromptBare(t *testing.T) {
	var captured capturedRequest
	srv := inferenceServer(t, http.StatusOK, `{"response": "ok"}`, &captured)
	defer srv.Close()

	client := NewCustomClient(srv.URL, "", "")
	_, err := client.Generate(context.Background(), "plain question", nil)
	require.NoError(t, err)

	assert.Equal(t, "plain question", decodeString(t, captured.body["user_prompt"]))
	assert.Equal(t, "", decodeString(t, captured.body["rag_context"]))
	assert.Equal(t, DefaultSystemPrompt, decodeString(t, captured.body["system_prompt"]))
	assert.Empty(t, captured.headers.Get("Authorization"))
}

func TestGenerate_APIErrorBecomesApology(t *testing.T) {
	srv := inferenceServer(t, http.StatusServiceUnavailable, "model overloaded", nil)
	defer srv.Close()

	client := NewCustomClient(srv.URL, "", "")
	got, err := client.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "I apologize, but I encountered an API error:")
	assert.Contains(t, got, "Custom LLM API error 503: model overloaded")
}

func TestGenerate_TimeoutBecomesApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewCustomClient(srv.URL, "", "")
	client.SetTimeout(20 * time.Millisecond)

	got, err := client.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "I apologize, but the request timed out: Custom LLM API request timed out (>5 minutes)", got)
}

func TestGenerate_NetworkErrorBecomesApology(t *testing.T) {
	srv := inferenceServer(t, http.StatusOK, `{}`, nil)
	srv.Close()

	client := NewCustomClient(srv.URL, "", "")
	got, err := client.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "I apologize, but I encountered a network error: Custom LLM API network error:")
}

func TestGenerate_MalformedResponseBecomesApology(t *testing.T) {
	srv := inferenceServer(t, http.StatusOK, "{not json", nil)
	defer srv.Close()

	client := NewCustomClient(srv.URL, "", "")
	got, err := client.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "I apologize, but I encountered an unexpected error: Custom LLM API unexpected error:")
}
