package service

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompt file names under the prompts directory.
const (
	ChatPromptFile       = "chat_prompt.yml"
	SummarizerPromptFile = "summarizer_prompt.yml"
)

const (
	// DefaultChatSystemPrompt is used when the chat prompt file cannot be
	// read or carries no SYSTEM_PROMPT key.
	DefaultChatSystemPrompt = "You are a helpful legal assistant specializing in Bangladeshi law."

	defaultSummarizerSystemPrompt = "You are a legal analyst specializing in Bangladeshi case law. Summarize court case details accurately without inventing facts."
	defaultSummarizerUserPrompt   = "Summarize the following case details:\n\n{case_details}"
)

// PromptFile mirrors the YAML layout of the files under prompts/.
type PromptFile struct {
	SystemPrompt string `yaml:"SYSTEM_PROMPT"`
	UserPrompt   string `yaml:"USER_PROMPT"`
}

// LoadPromptFile reads and parses one YAML prompt file.
func LoadPromptFile(path string) (PromptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptFile{}, fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}

	var pf PromptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return PromptFile{}, fmt.Errorf("failed to parse prompt file %s: %w", path, err)
	}
	return pf, nil
}

// ChatSystemPrompt loads the chat system prompt from path, falling back to
// the built-in default with a warning when the file is missing or has no
// SYSTEM_PROMPT key. A missing prompt file must not keep the server from
// starting.
func ChatSystemPrompt(path string) string {
	pf, err := LoadPromptFile(path)
	if err != nil {
		log.Printf("Warning: %v, using built-in chat prompt", err)
		return DefaultChatSystemPrompt
	}
	if pf.SystemPrompt == "" {
		log.Printf("Warning: no SYSTEM_PROMPT in %s, using built-in chat prompt", path)
		return DefaultChatSystemPrompt
	}
	return pf.SystemPrompt
}

// SummarizerPrompts loads the summarizer system and user prompts from path,
// with per-key fallbacks. The user prompt carries a {case_details}
// placeholder replaced at request time.
func SummarizerPrompts(path string) (system, user string) {
	pf, err := LoadPromptFile(path)
	if err != nil {
		log.Printf("Warning: %v, using built-in summarizer prompts", err)
		return defaultSummarizerSystemPrompt, defaultSummarizerUserPrompt
	}
	system, user = pf.SystemPrompt, pf.UserPrompt
	if system == "" {
		system = defaultSummarizerSystemPrompt
	}
	if user == "" {
		user = defaultSummarizerUserPrompt
	}
	return system, user
}
