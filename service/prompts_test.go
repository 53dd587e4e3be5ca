package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePromptFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ChatPromptFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPromptFile(t *testing.T) {
	path := writePromptFile(t, "SYSTEM_PROMPT: |\n  You are a legal assistant.\n  Answer precisely.\nUSER_PROMPT: \"Summarize: {case_details}\"\n")

	pf, err := LoadPromptFile(path)
	require.NoError(t, err)
	assert.Equal(t, "You are a legal assistant.\nAnswer precisely.\n", pf.SystemPrompt)
	assert.Equal(t, "Summarize: {case_details}", pf.UserPrompt)
}

func TestLoadPromptFile_Malformed(t *testing.T) {
	path := writePromptFile(t, "SYSTEM_PROMPT: [unclosed\n")

	_, err := LoadPromptFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse prompt file")
}

func TestChatSystemPrompt(t *testing.T) {
	t.Run("reads SYSTEM_PROMPT", func(t *testing.T) {
		path := writePromptFile(t, "SYSTEM_PROMPT: You advise on Bangladeshi law.\n")
		assert.Equal(t, "You advise on Bangladeshi law.", ChatSystemPrompt(path))
	})

	t.Run("missing file falls back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.yml")
		assert.Equal(t, DefaultChatSystemPrompt, ChatSystemPrompt(path))
	})

	t.Run("missing key falls back", func(t *testing.T) {
		path := writePromptFile(t, "USER_PROMPT: hello\n")
		assert.Equal(t, DefaultChatSystemPrompt, ChatSystemPrompt(path))
	})
}

func TestSummarizerPrompts(t *testing.T) {
	t.Run("reads both keys", func(t *testing.T) {
		path := writePromptFile(t, "SYSTEM_PROMPT: Summarize cases.\nUSER_PROMPT: \"Case: {case_details}\"\n")
		system, user := SummarizerPrompts(path)
		assert.Equal(t, "Summarize cases.", system)
		assert.Equal(t, "Case: {case_details}", user)
	})

	t.Run("per-key fallback", func(t *testing.T) {
		path := writePromptFile(t, "SYSTEM_PROMPT: Summarize cases.\n")
		system, user := SummarizerPrompts(path)
		assert.Equal(t, "Summarize cases.", system)
		assert.Equal(t, defaultSummarizerUserPrompt, user)
	})

	t.Run("missing file falls back entirely", func(t *testing.T) {
		system, user := SummarizerPrompts(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Equal(t, defaultSummarizerSystemPrompt, system)
		assert.Equal(t, defaultSummarizerUserPrompt, user)
	})
}
