package service

import (
	"strings"
	"testing"

	"policyassist-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Deterministic(t *testing.T) {
	chunker := NewChunker(100, 20)
	fileID := uuid.New()
	pages := []string{
		strings.Repeat("alpha beta gamma delta ", 10),
		strings.Repeat("epsilon zeta eta theta ", 10),
	}

	first := chunker.Chunk(pages, fileID, "policy_docs")
	second := chunker.Chunk(pages, fileID, "policy_docs")

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Page, second[i].Page)
		assert.Equal(t, first[i].SequenceIndex, second[i].SequenceIndex)
		assert.GreaterOrEqual(t, first[i].Page, 1)
		assert.LessOrEqual(t, first[i].Page, len(pages))
	}
}

func TestChunk_SizeAndOverlap(t *testing.T) {
	chunker := NewChunker(100, 20)
	pages := []string{strings.Repeat("word ", 100)}

	chunks := chunker.Chunk(pages, uuid.New(), "policy_docs")
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 100)
		assert.Equal(t, i, c.SequenceIndex)
		assert.Equal(t, models.ChunkKindProse, c.Kind)
	}
	// consecutive chunks share text through the overlap window
	tail := chunks[0].Text[len(chunks[0].Text)-10:]
	assert.Contains(t, chunks[1].Text, strings.TrimSpace(tail))
}

func TestChunk_PageAttribution(t *testing.T) {
	chunker := NewChunker(1000, 200)
	pages := []string{
		"short first page",
		strings.Repeat("second page text ", 20),
	}

	chunks := chunker.Chunk(pages, uuid.New(), "policy_docs")
	require.Len(t, chunks, 1)
	// most of the chunk's characters live on page 2
	assert.Equal(t, 2, chunks[0].Page)
}

func TestChunk_PageAttributionFirstPageMajority(t *testing.T) {
	chunker := NewChunker(1000, 200)
	pages := []string{
		strings.Repeat("first page text ", 20),
		"short tail",
	}

	chunks := chunker.Chunk(pages, uuid.New(), "policy_docs")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Page)
}

func TestChunk_EmptyInput(t *testing.T) {
	chunker := NewChunker(1000, 200)
	assert.Nil(t, chunker.Chunk(nil, uuid.New(), "policy_docs"))
	assert.Nil(t, chunker.Chunk([]string{"", "   "}, uuid.New(), "policy_docs"))
}

func TestExtractTables_PipeRows(t *testing.T) {
	fileID := uuid.New()
	pages := []string{
		"Intro text before the table.\n" +
			"| Plan | Deductible | Premium |\n" +
			"| --- | --- | --- |\n" +
			"| Basic | 500 | 120 |\n" +
			"| Plus | 250 | 180 |\n" +
			"Trailing prose.",
	}

	tables := ExtractTables(pages, fileID, "policy_docs", 7)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, models.ChunkKindTable, table.Kind)
	assert.Equal(t, 1, table.Page)
	assert.Equal(t, 7, table.SequenceIndex)
	assert.Contains(t, table.Text, "Plan | Deductible | Premium")
	assert.Contains(t, table.Text, "Basic | 500 | 120")
	assert.NotContains(t, table.Text, "---")
	assert.NotContains(t, table.Text, "Intro text")
}

func TestExtractTables_SingleRowIgnored(t *testing.T) {
	pages := []string{"prose\n| just | one | row |\nmore prose"}
	assert.Empty(t, ExtractTables(pages, uuid.New(), "policy_docs", 0))
}

func TestExtractTables_PagePerTable(t *testing.T) {
	pages := []string{
		"no tables here",
		"| a | b |\n| 1 | 2 |",
	}

	tables := ExtractTables(pages, uuid.New(), "policy_docs", 0)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Page)
}
