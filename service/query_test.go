package service

import (
	"context"
	"strings"
	"testing"

	"policyassist-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk_GroundedAnswer(t *testing.T) {
	index := &memoryIndex{}
	require.NoError(t, index.Ingest(context.Background(), models.Chunk{
		ChunkID:    uuid.New(),
		FileID:     uuid.New(),
		Collection: "policy_docs",
		Text:       "The deductible is 500 per claim.",
		Page:       3,
		Kind:       models.ChunkKindProse,
	}, []float32{1, 0, 0}))

	embedder := &stubEmbedder{vector: []float32{1, 0, 0}}
	llm := &stubLLM{response: "The deductible is 500 (Page 3)."}
	svc := NewQueryService(embedder, index, NewSynthesizer(llm), llm, "policy_docs")

	result, err := svc.Ask(context.Background(), "What is the deductible amount?")
	require.NoError(t, err)

	assert.Equal(t, models.QueryTypeNumeric, result.QueryType)
	assert.False(t, result.GapDetected)
	assert.Equal(t, llm.response, result.AnswerOrOutcome)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, 3, result.Citations[0].Page)
}

func TestAsk_GapWhenNothingRelevant(t *testing.T) {
	index := &memoryIndex{}
	require.NoError(t, index.Ingest(context.Background(), models.Chunk{
		ChunkID:    uuid.New(),
		Collection: "policy_docs",
		Text:       "Unrelated clause.",
		Page:       1,
	}, []float32{0, 1, 0}))

	embedder := &stubEmbedder{vector: []float32{1, 0, 0}}
	llm := &stubLLM{response: "unused"}
	svc := NewQueryService(embedder, index, NewSynthesizer(llm), llm, "policy_docs")

	result, err := svc.Ask(context.Background(), "Is hail damage covered?")
	require.NoError(t, err)

	assert.True(t, result.GapDetected)
	assert.Zero(t, llm.calls)
}

func TestScenario_UsesComplianceMode(t *testing.T) {
	index := &memoryIndex{}
	require.NoError(t, index.Ingest(context.Background(), models.Chunk{
		ChunkID:    uuid.New(),
		Collection: "policy_docs",
		Text:       "Storm damage to roofs is covered up to 50000.",
		Page:       2,
	}, []float32{1, 0, 0}))

	embedder := &stubEmbedder{vector: []float32{1, 0, 0}}
	llm := &stubLLM{response: "Covered. Storm damage is included (Page 2)."}
	svc := NewQueryService(embedder, index, NewSynthesizer(llm), llm, "policy_docs")

	result, err := svc.Scenario(context.Background(), "A storm tore shingles off my roof")
	require.NoError(t, err)

	assert.False(t, result.GapDetected)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Scenario:")
}

func TestSummarize(t *testing.T) {
	llm := &stubLLM{response: "Short summary."}
	svc := NewQueryService(&stubEmbedder{}, &memoryIndex{}, NewSynthesizer(llm), llm, "policy_docs")

	summary, err := svc.Summarize(context.Background(), strings.Repeat("text ", 50))
	require.NoError(t, err)
	assert.Equal(t, "Short summary.", summary)

	_, err = svc.Summarize(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
