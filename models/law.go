package models

// LawRecord represents one statute section as it appears in the batch files.
type LawRecord struct {
	PartSection string `json:"part_section"`
	LawText     string `json:"law_text"`
}

// LawChunk is one embeddable segment of a law record. Short records produce
// a single chunk covering the whole text; long records are split with
// overlap and every chunk repeats the section label so it stays
// attributable when retrieved in isolation.
type LawChunk struct {
	PartSection string
	ChunkIndex  int
	TotalChunks int
	// Content is the embedding-input string (section label + chunk text).
	Content string
	// ChunkContent is the raw chunk text without the label prefix.
	ChunkContent string
}

// Payload returns the stored metadata for a law point. fullText is the
// parent record's complete law_text, kept on every chunk for reference.
func (c LawChunk) Payload(fullText string) map[string]interface{} {
	return map[string]interface{}{
		"part_section":  c.PartSection,
		"law_text":      fullText,
		"chunk_content": c.ChunkContent,
		"chunk_index":   c.ChunkIndex,
		"total_chunks":  c.TotalChunks,
		"is_chunked":    c.TotalChunks > 1,
	}
}
