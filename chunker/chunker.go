// Package chunker splits long law texts into bounded, overlapping segments
// for embedding. Splitting is recursive: paragraph breaks are preferred,
// then line breaks, then sentence ends, then word boundaries, then raw
// character cuts, so segments stay as semantically coherent as the text
// allows. Lengths are counted in runes, not bytes; the source corpus is
// largely Bangla and byte cuts would corrupt it.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"lawgpt-backend/models"
)

const (
	// DefaultChunkSize is the target maximum segment length in runes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the shared region between consecutive segments.
	DefaultChunkOverlap = 100
	// DefaultNoSplitThreshold is the length at or below which a law text is
	// embedded whole as a single chunk.
	DefaultNoSplitThreshold = 1000
)

// Separator preference, most meaningful boundary first. The empty string
// is the terminal hard cut and must stay last.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// RecursiveChunker produces deterministic ordered chunk lists. Chunks never
// exceed the configured size and cover the input end-to-end (overlap
// regions are duplicated, boundary whitespace may be trimmed).
type RecursiveChunker struct {
	chunkSize  int
	overlap    int
	threshold  int
	separators []string
}

// New returns a chunker with the pipeline defaults (1000/100/1000).
func New() *RecursiveChunker {
	return NewWithConfig(DefaultChunkSize, DefaultChunkOverlap, DefaultNoSplitThreshold)
}

// NewWithConfig returns a chunker with explicit size, overlap, and
// no-split threshold. Non-positive size falls back to the default;
// overlap is clamped into [0, size).
func NewWithConfig(chunkSize, overlap, threshold int) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	if threshold < 0 {
		threshold = DefaultNoSplitThreshold
	}
	return &RecursiveChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		threshold:  threshold,
		separators: defaultSeparators,
	}
}

// ChunkLaw expands one law record into its ordered chunk list. Records at
// or below the threshold come back as exactly one chunk equal to the whole
// text; longer records are split and every chunk's embedding input repeats
// the section label with its position.
func (c *RecursiveChunker) ChunkLaw(rec models.LawRecord) []models.LawChunk {
	if runeLen(rec.LawText) <= c.threshold {
		return []models.LawChunk{{
			PartSection:  rec.PartSection,
			ChunkIndex:   0,
			TotalChunks:  1,
			Content:      fmt.Sprintf("Part Section: %s\nLaw Text: %s", rec.PartSection, rec.LawText),
			ChunkContent: rec.LawText,
		}}
	}

	pieces := c.SplitText(rec.LawText)
	chunks := make([]models.LawChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.LawChunk{
			PartSection:  rec.PartSection,
			ChunkIndex:   i,
			TotalChunks:  len(pieces),
			Content:      fmt.Sprintf("Part Section: %s\nLaw Text (Chunk %d/%d): %s", rec.PartSection, i+1, len(pieces), piece),
			ChunkContent: piece,
		})
	}
	return chunks
}

// SplitText splits text into segments of at most chunkSize runes with the
// configured overlap. The no-split threshold does not apply here; callers
// that want the single-chunk shortcut go through ChunkLaw.
func (c *RecursiveChunker) SplitText(text string) []string {
	if text == "" {
		return nil
	}
	fragments := c.fragment(text, c.separators)
	return c.merge(fragments)
}

// fragment recursively cuts text into pieces no longer than chunkSize,
// each piece keeping its trailing separator so concatenation reproduces
// the input exactly.
func (c *RecursiveChunker) fragment(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, s := range separators {
		if s == "" {
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return hardCut(text, c.chunkSize)
	}

	var out []string
	for _, part := range splitAfter(text, sep) {
		if runeLen(part) <= c.chunkSize {
			out = append(out, part)
		} else {
			out = append(out, c.fragment(part, rest)...)
		}
	}
	return out
}

// merge greedily packs fragments into chunks up to chunkSize, carrying a
// tail of up to overlap runes of the previous chunk into the next one.
func (c *RecursiveChunker) merge(fragments []string) []string {
	var chunks []string
	var window []string
	windowLen := 0

	emit := func() {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, frag := range fragments {
		fragLen := runeLen(frag)
		if windowLen+fragLen > c.chunkSize && windowLen > 0 {
			emit()
			for windowLen > c.overlap || (windowLen+fragLen > c.chunkSize && windowLen > 0) {
				windowLen -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, frag)
		windowLen += fragLen
	}
	if windowLen > 0 {
		emit()
	}
	return chunks
}

// hardCut slices text into runs of at most size runes. Last resort for
// text with no usable boundaries.
func hardCut(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// splitAfter is strings.SplitAfter without the empty trailing element that
// appears when text ends with the separator.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
