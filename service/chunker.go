package service

import (
	"fmt"
	"strings"

	"policyassist-backend/models"

	"github.com/google/uuid"
)

// Chunker splits per-page document text into overlapping, page-attributed
// passages. Splitting is character-size-based over word boundaries and fully
// deterministic: the same pages with the same parameters always produce the
// same chunk sequence.
type Chunker struct {
	chunkSize int // target chunk length in characters
	overlap   int // characters shared between consecutive chunks
}

// NewChunker creates a chunker. Non-positive parameters fall back to the
// defaults used across the corpus (1000/200).
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

type span struct {
	start, end int
}

// Chunk produces the ordered prose chunks of a document. A chunk's page is
// the page containing the majority of its characters (ties go to the earlier
// page). Pure transform: no I/O, no error path.
func (c *Chunker) Chunk(pages []string, fileID uuid.UUID, collection string) []models.Chunk {
	text, pageSpans := joinPages(pages)
	words := wordSpans(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []models.Chunk
	seq := 0
	i := 0
	for i < len(words) {
		j := i
		for j < len(words) && words[j].end-words[i].start <= c.chunkSize {
			j++
		}
		if j == i {
			// single word longer than chunkSize
			j = i + 1
		}

		start, end := words[i].start, words[j-1].end
		content := strings.TrimSpace(text[start:end])
		if content != "" {
			chunks = append(chunks, models.Chunk{
				ChunkID:       uuid.New(),
				FileID:        fileID,
				Collection:    collection,
				Text:          content,
				Page:          majorityPage(start, end, pageSpans),
				Kind:          models.ChunkKindProse,
				SequenceIndex: seq,
			})
			seq++
		}

		if j >= len(words) {
			break
		}

		// step back so the next chunk re-covers the overlap window
		next := j
		for next > i+1 && words[next-1].start >= end-c.overlap {
			next--
		}
		if next <= i {
			next = i + 1
		}
		i = next
	}

	return chunks
}

// joinPages concatenates pages and records the character span of each page.
func joinPages(pages []string) (string, []span) {
	var sb strings.Builder
	spans := make([]span, len(pages))
	offset := 0
	for i, p := range pages {
		spans[i] = span{start: offset, end: offset + len(p)}
		sb.WriteString(p)
		sb.WriteString("\n")
		offset += len(p) + 1
	}
	return sb.String(), spans
}

func wordSpans(text string) []span {
	var words []span
	start := -1
	for i := 0; i < len(text); i++ {
		isSpace := text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r' || text[i] == '\f'
		if isSpace {
			if start >= 0 {
				words = append(words, span{start: start, end: i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, span{start: start, end: len(text)})
	}
	return words
}

// majorityPage returns the 1-based page owning most of [start,end).
func majorityPage(start, end int, pageSpans []span) int {
	best := 1
	bestOverlap := -1
	for i, ps := range pageSpans {
		lo, hi := start, end
		if ps.start > lo {
			lo = ps.start
		}
		if ps.end < hi {
			hi = ps.end
		}
		if hi-lo > bestOverlap {
			bestOverlap = hi - lo
			best = i + 1
		}
	}
	return best
}

// ExtractTables runs a separate pass over the same pages and extracts tabular
// regions as kind=table chunks. A table is a run of two or more consecutive
// pipe-delimited rows; its text is a row-major serialization with " | " cell
// delimiters and one row per line, so numeric lookups stay parseable.
// SequenceIndex continues from startIndex so table chunks sort after the
// prose chunks they accompany.
func ExtractTables(pages []string, fileID uuid.UUID, collection string, startIndex int) []models.Chunk {
	var chunks []models.Chunk
	seq := startIndex

	for pageIdx, page := range pages {
		lines := strings.Split(page, "\n")
		i := 0
		for i < len(lines) {
			if !isTableRow(lines[i]) {
				i++
				continue
			}
			j := i
			var rows [][]string
			for j < len(lines) && isTableRow(lines[j]) {
				if !isSeparatorRow(lines[j]) {
					rows = append(rows, splitRow(lines[j]))
				}
				j++
			}
			if len(rows) >= 2 {
				chunks = append(chunks, models.Chunk{
					ChunkID:       uuid.New(),
					FileID:        fileID,
					Collection:    collection,
					Text:          serializeTable(rows, pageIdx+1),
					Page:          pageIdx + 1,
					Kind:          models.ChunkKindTable,
					SequenceIndex: seq,
				})
				seq++
			}
			i = j
		}
	}

	return chunks
}

func isTableRow(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "|") && strings.Count(line, "|") >= 2
}

func isSeparatorRow(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "|") && strings.Contains(line, "---")
}

func splitRow(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), "|")
	var cells []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

func serializeTable(rows [][]string, page int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[TABLE page %d]\n", page))
	for _, row := range rows {
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
