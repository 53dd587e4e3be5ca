package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

// SummarizerModel backs case summarization. Runs warmer than chat so the
// summary reads as prose rather than an extract.
const SummarizerModel = "gemini-2.0-flash"

const summarizerTemperature = 0.5

// SummarizerService condenses raw case details into a short summary using
// a JSON-constrained Gemini call.
type SummarizerService struct {
	client       *genai.Client
	systemPrompt string
	userPrompt   string
}

// SummarizerOption is a functional option for SummarizerService
type SummarizerOption func(*SummarizerService)

// SummarizerWithClient sets the Gemini client
func SummarizerWithClient(client *genai.Client) SummarizerOption {
	return func(s *SummarizerService) {
		s.client = client
	}
}

// SummarizerWithPrompts sets the system and user prompt templates
func SummarizerWithPrompts(system, user string) SummarizerOption {
	return func(s *SummarizerService) {
		s.systemPrompt = system
		s.userPrompt = user
	}
}

// NewSummarizerService creates a new summarizer service
func NewSummarizerService(opts ...SummarizerOption) *SummarizerService {
	s := &SummarizerService{
		systemPrompt: defaultSummarizerSystemPrompt,
		userPrompt:   defaultSummarizerUserPrompt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SummarizeRequest carries the raw case details to summarize
type SummarizeRequest struct {
	CaseDetails string
}

// SummarizeResult carries the generated summary
type SummarizeResult struct {
	CaseSummary string `json:"case_summary"`
}

// SummarizeCase produces a short summary of the given case details. The
// model is constrained to a single-field JSON object so the summary can be
// extracted without prose scraping.
func (s *SummarizerService) SummarizeCase(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	if s.client == nil {
		return nil, errors.New("gemini client not set")
	}

	model := s.client.GenerativeModel(SummarizerModel)
	model.SetTemperature(summarizerTemperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"case_summary": {
				Type:        genai.TypeString,
				Description: "short and detailed summary of the case",
			},
		},
		Required: []string{"case_summary"},
	}
	if s.systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s.systemPrompt)}}
	}

	prompt := genai.Text(renderUserPrompt(s.userPrompt, req.CaseDetails))

	var text string
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
				return nil, fmt.Errorf("failed to summarize case: %w", err)
			}
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to summarize case after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		text = geminiResponseText(resp)
		if text != "" {
			break
		}
		if attempt == maxRetries-1 {
			return nil, ErrEmptyCompletion
		}
	}

	var result SummarizeResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("failed to parse summarizer response: %w", err)
	}
	return &result, nil
}

// renderUserPrompt substitutes the case details into the template. Plain
// replacement, not a template engine: case details routinely contain braces
// from quoted statutes.
func renderUserPrompt(template, caseDetails string) string {
	return strings.ReplaceAll(template, "{case_details}", caseDetails)
}
