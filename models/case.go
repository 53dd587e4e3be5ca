package models

import (
	"fmt"
	"strings"
)

// CaseRecord represents one legal case as it appears in the batch files.
// The hyphenated JSON keys match the scraped dataset and must not change.
type CaseRecord struct {
	CaseTitle   string `json:"case-title"`
	Division    string `json:"division"`
	LawCategory string `json:"law_category"`
	LawAct      string `json:"law_act"`
	Reference   string `json:"reference"`
	CaseDetails string `json:"case-details"`
}

// EmbeddingText builds the field-labeled content string that gets embedded
// for a case. All six fields are included so title-only queries still land
// near the full record.
func (c CaseRecord) EmbeddingText() string {
	parts := []string{
		fmt.Sprintf("Case Title: %s", c.CaseTitle),
		fmt.Sprintf("Division: %s", c.Division),
		fmt.Sprintf("Law Category: %s", c.LawCategory),
		fmt.Sprintf("Law Act: %s", c.LawAct),
		fmt.Sprintf("Reference: %s", c.Reference),
		fmt.Sprintf("Case Details: %s", c.CaseDetails),
	}
	return strings.Join(parts, "\n")
}

// Payload returns the stored metadata for a case point. Keys are snake_case
// regardless of the source file's hyphenated spelling.
func (c CaseRecord) Payload() map[string]interface{} {
	return map[string]interface{}{
		"case_title":   c.CaseTitle,
		"division":     c.Division,
		"law_category": c.LawCategory,
		"law_act":      c.LawAct,
		"reference":    c.Reference,
		"case_details": c.CaseDetails,
	}
}
