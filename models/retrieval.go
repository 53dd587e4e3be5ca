package models

// ResultType tags which collection a retrieval result came from.
type ResultType string

const (
	ResultTypeCase ResultType = "case"
	ResultTypeLaw  ResultType = "law"
)

// RetrievalResult is one formatted context item handed to the generator.
// It lives for a single request and is never persisted.
type RetrievalResult struct {
	Type    ResultType `json:"type"`
	Content string     `json:"content"`
	Score   float32    `json:"score"`
	ID      uint64     `json:"id"`
}
