package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lawgpt-backend/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"google.golang.org/api/googleapi"
)

// Backing models for the direct-API generators.
const (
	GeminiChatModel = "gemini-2.0-flash-lite"
	OpenAIChatModel = "gpt-5-nano"

	maxRetries     = 3
	initialBackoff = time.Second
)

var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Generator produces the answer for one chat turn. Implementations are
// stateless across calls; every invocation carries the full user input and
// retrieval context.
type Generator interface {
	Generate(ctx context.Context, userInput string, ragContext []models.RetrievalResult) (string, error)
}

// ContextText renders retrieval results into the prompt suffix appended to
// the user message. Each item becomes one labeled line under a shared
// header; an empty context renders to an empty string so the user message
// passes through untouched.
func ContextText(items []models.RetrievalResult) string {
	if len(items) == 0 {
		return ""
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case models.ResultTypeCase:
			parts = append(parts, "Legal Case: "+item.Content)
		case models.ResultTypeLaw:
			parts = append(parts, "Law Reference: "+item.Content)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\nRelevant Context:\n" + strings.Join(parts, "\n")
}

// GeminiGenerator answers chat turns through the Gemini API with a fixed
// model and zero temperature.
type GeminiGenerator struct {
	client       *genai.Client
	model        string
	systemPrompt string
}

// NewGeminiGenerator creates a Gemini-backed generator using the given
// system prompt for every turn.
func NewGeminiGenerator(client *genai.Client, systemPrompt string) *GeminiGenerator {
	return &GeminiGenerator{
		client:       client,
		model:        GeminiChatModel,
		systemPrompt: systemPrompt,
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, userInput string, ragContext []models.RetrievalResult) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not set")
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0)
	if g.systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(g.systemPrompt)}}
	}
	prompt := genai.Text(userInput + ContextText(ragContext))

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		resp, err := model.GenerateContent(ctx, prompt)
		if err != nil {
			// Don't retry on invalid input or bad credentials
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusUnauthorized) {
				return "", fmt.Errorf("gemini generation failed: %w", err)
			}
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("gemini generation failed after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if text := geminiResponseText(resp); text != "" {
			return text, nil
		}
		if attempt == maxRetries-1 {
			return "", ErrEmptyCompletion
		}
	}

	return "", ErrEmptyCompletion
}

// geminiResponseText concatenates the text parts of the first candidate.
func geminiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// OpenAIGenerator answers chat turns through the OpenAI chat completions
// API with a fixed model and zero temperature.
type OpenAIGenerator struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIGenerator creates an OpenAI-backed generator using the given
// system prompt for every turn.
func NewOpenAIGenerator(apiKey, systemPrompt string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:        OpenAIChatModel,
		systemPrompt: systemPrompt,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, userInput string, ragContext []models.RetrievalResult) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if g.systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(g.systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userInput+ContextText(ragContext)))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    messages,
		Temperature: openai.Float(0),
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		completion, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			// Don't retry on invalid input or bad credentials
			var apiErr *openai.Error
			if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
				return "", fmt.Errorf("openai generation failed: %w", err)
			}
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("openai generation failed after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if len(completion.Choices) > 0 && completion.Choices[0].Message.Content != "" {
			return completion.Choices[0].Message.Content, nil
		}
		if attempt == maxRetries-1 {
			return "", ErrEmptyCompletion
		}
	}

	return "", ErrEmptyCompletion
}
