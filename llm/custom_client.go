// Package llm contains the client for the self-hosted inference endpoint
// behind the custom_llm chat model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"lawgpt-backend/models"
	"lawgpt-backend/service"
)

const (
	// DefaultTimeout bounds one inference call end to end. Cold starts on
	// the hosted model can take minutes.
	DefaultTimeout = 300 * time.Second

	maxNewTokens = 2048

	// DefaultSystemPrompt is used when no chat prompt could be loaded.
	DefaultSystemPrompt = "You are a helpful legal assistant specializing in Bangladeshi law. Provide accurate, detailed responses."
)

// inferenceRequest is the wire format the endpoint accepts. ChatHistory is
// always empty: the chat service is stateless and the field exists only
// because the endpoint requires it.
type inferenceRequest struct {
	UserPrompt   string   `json:"user_prompt"`
	SystemPrompt string   `json:"system_prompt"`
	ChatHistory  []string `json:"chat_history"`
	RAGContext   string   `json:"rag_context"`
	MaxNewTokens int      `json:"max_new_tokens"`
}

type inferenceResponse struct {
	Response      string  `json:"response"`
	ModelName     string  `json:"model_name"`
	InferenceTime float64 `json:"inference_time"`
}

// CustomClient talks to the hosted inference endpoint. Generate never
// returns an error: HTTP failures, timeouts, network errors, and anything
// unexpected each map to a distinct user-facing apology string.
type CustomClient struct {
	apiURL       string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

// NewCustomClient creates a client for the given endpoint. An empty
// systemPrompt selects DefaultSystemPrompt.
func NewCustomClient(apiURL, apiKey, systemPrompt string) *CustomClient {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &CustomClient{
		apiURL:       apiURL,
		apiKey:       apiKey,
		systemPrompt: systemPrompt,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout overrides the request timeout.
func (c *CustomClient) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// Generate posts one inference request. The rendered context rides along
// twice: appended to the user prompt and again in the rag_context field,
// which is the shape the endpoint was trained against.
func (c *CustomClient) Generate(ctx context.Context, userInput string, ragContext []models.RetrievalResult) (string, error) {
	contextText := service.ContextText(ragContext)

	payload := inferenceRequest{
		UserPrompt:   userInput + contextText,
		SystemPrompt: c.systemPrompt,
		ChatHistory:  []string{},
		RAGContext:   contextText,
		MaxNewTokens: maxNewTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apologyUnexpected(err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return apologyUnexpected(err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			detail := "Custom LLM API request timed out (>5 minutes)"
			log.Printf("Warning: %s", detail)
			return "I apologize, but the request timed out: " + detail, nil
		}
		detail := fmt.Sprintf("Custom LLM API network error: %v", err)
		log.Printf("Warning: %s", detail)
		return "I apologize, but I encountered a network error: " + detail, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apologyUnexpected(err), nil
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("Custom LLM API error %d: %s", resp.StatusCode, string(raw))
		log.Printf("Warning: %s", detail)
		return "I apologize, but I encountered an API error: " + detail, nil
	}

	var result inferenceResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return apologyUnexpected(err), nil
	}

	log.Printf("Custom LLM response received from %s (inference time %.2fs)", result.ModelName, result.InferenceTime)
	return result.Response, nil
}

func apologyUnexpected(err error) string {
	detail := fmt.Sprintf("Custom LLM API unexpected error: %v", err)
	log.Printf("Warning: %s", detail)
	return "I apologize, but I encountered an unexpected error: " + detail
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ service.Generator = (*CustomClient)(nil)
