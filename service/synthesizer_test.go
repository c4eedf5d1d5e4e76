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

func evidenceItem(page int, score float64, text string) models.EvidenceItem {
	return models.EvidenceItem{
		Chunk: models.Chunk{
			ChunkID:    uuid.New(),
			FileID:     uuid.New(),
			Collection: "policy_docs",
			Text:       text,
			Page:       page,
			Kind:       models.ChunkKindProse,
		},
		Score: score,
	}
}

func TestSynthesize_GapOnEmptyEvidence(t *testing.T) {
	llm := &stubLLM{response: "should never be used"}
	syn := NewSynthesizer(llm)

	result, err := syn.Synthesize(context.Background(), "What is covered?", nil, models.AnswerModeQA, ClassifyQuery("What is covered?"))
	require.NoError(t, err)

	assert.True(t, result.GapDetected)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
	assert.Contains(t, result.Suggestion, "What is covered?")
	assert.Empty(t, result.Citations)
	assert.Zero(t, llm.calls, "gap short-circuit must not call the model")
}

func TestSynthesize_GapSuggestionNamesMissingContent(t *testing.T) {
	llm := &stubLLM{response: "should never be used"}
	syn := NewSynthesizer(llm)
	query := "How much is the deductible for dental work?"

	result, err := syn.Synthesize(context.Background(), query, nil, models.AnswerModeQA, ClassifyQuery(query))
	require.NoError(t, err)

	assert.True(t, result.GapDetected)
	assert.Contains(t, result.Suggestion, "amounts, limits or deadlines")
	assert.Contains(t, result.Suggestion, "deductible")
}

func TestSynthesize_GapOnWeakEvidence(t *testing.T) {
	llm := &stubLLM{response: "should never be used"}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{evidenceItem(4, 0.30, "barely related text")}

	result, err := syn.Synthesize(context.Background(), "What about flood damage?", evidence, models.AnswerModeQA, ClassifyQuery("What about flood damage?"))
	require.NoError(t, err)

	assert.True(t, result.GapDetected)
	assert.Zero(t, llm.calls)
}

func TestSynthesize_CitationsComeFromEvidence(t *testing.T) {
	llm := &stubLLM{response: "Coverage is limited to 80% (Page 2), excluding cosmetic procedures (Page 5)."}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{
		evidenceItem(2, 0.85, "Coverage is limited to 80 percent of eligible costs."),
		evidenceItem(5, 0.70, "Eligible costs exclude cosmetic procedures."),
		evidenceItem(2, 0.60, "The annual maximum is 2000."),
		evidenceItem(9, 0.50, "Unrelated appendix material."),
	}

	result, err := syn.Synthesize(context.Background(), "What share of costs is covered?", evidence, models.AnswerModeQA, ClassifyQuery("What share of costs is covered?"))
	require.NoError(t, err)

	assert.False(t, result.GapDetected)
	assert.Equal(t, 1, llm.calls)
	require.Len(t, result.Citations, 3)
	assert.Equal(t, 2, result.Citations[0].Page)
	assert.Equal(t, 5, result.Citations[1].Page)
	assert.Equal(t, 2, result.Citations[2].Page)
	// the answer references two distinct evidence pages inline
	assert.Equal(t, models.ConfidenceHigh, result.Confidence)
}

func TestSynthesize_SinglePageIsMedium(t *testing.T) {
	llm := &stubLLM{response: "The deductible is 500 (Page 3)."}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{
		evidenceItem(3, 0.50, "The deductible is 500 per claim."),
		evidenceItem(3, 0.45, "Deductibles apply once per incident."),
	}

	result, err := syn.Synthesize(context.Background(), "What is the deductible?", evidence, models.AnswerModeQA, ClassifyQuery("What is the deductible?"))
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceMedium, result.Confidence)
}

func TestSynthesize_UncitedAnswerFallsBackToScore(t *testing.T) {
	// evidence spans two pages, but the answer references none of them
	llm := &stubLLM{response: "The limit is 100000."}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{
		evidenceItem(2, 0.50, "The limit is 100000 per occurrence."),
		evidenceItem(5, 0.45, "Limits reset annually."),
	}

	result, err := syn.Synthesize(context.Background(), "What is the limit?", evidence, models.AnswerModeQA, ClassifyQuery("What is the limit?"))
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
}

func TestSynthesize_InventedPageReferencesDoNotCount(t *testing.T) {
	llm := &stubLLM{response: "See (Page 40) and (Page 41) for details."}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{
		evidenceItem(2, 0.50, "The limit is 100000 per occurrence."),
		evidenceItem(5, 0.45, "Limits reset annually."),
	}

	result, err := syn.Synthesize(context.Background(), "What is the limit?", evidence, models.AnswerModeQA, ClassifyQuery("What is the limit?"))
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
}

func TestSynthesize_UncertaintyLowersConfidence(t *testing.T) {
	llm := &stubLLM{response: "The policy does not specify a waiting period for this."}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{
		evidenceItem(1, 0.80, "General conditions."),
		evidenceItem(6, 0.75, "Waiting periods vary by benefit."),
	}

	result, err := syn.Synthesize(context.Background(), "Is there a waiting period?", evidence, models.AnswerModeQA, ClassifyQuery("Is there a waiting period?"))
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
}

func TestSynthesize_ComplianceModePrompt(t *testing.T) {
	llm := &stubLLM{response: "Covered. The policy includes storm damage (Page 2)."}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{
		evidenceItem(2, 0.80, "Storm damage to the roof is covered."),
	}

	result, err := syn.Synthesize(context.Background(), "A storm damaged my roof", evidence, models.AnswerModeCompliance, ClassifyQuery("A storm damaged my roof"))
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Scenario:")
	assert.Contains(t, llm.prompts[0], "[Page 2]")
	assert.False(t, result.GapDetected)
}

func TestSynthesize_ExcerptCapped(t *testing.T) {
	llm := &stubLLM{response: "Long answer."}
	syn := NewSynthesizer(llm)
	long := strings.Repeat("coverage terms and conditions ", 20)
	evidence := models.RetrievedEvidence{evidenceItem(1, 0.90, long)}

	result, err := syn.Synthesize(context.Background(), "What are the terms?", evidence, models.AnswerModeQA, ClassifyQuery("What are the terms?"))
	require.NoError(t, err)

	require.Len(t, result.Citations, 1)
	assert.LessOrEqual(t, len(result.Citations[0].Excerpt), citationExcerptLen+3)
}

func TestSynthesize_GenerationErrorPropagates(t *testing.T) {
	llm := &stubLLM{err: ErrGenerationUnavailable}
	syn := NewSynthesizer(llm)
	evidence := models.RetrievedEvidence{evidenceItem(1, 0.90, "text")}

	_, err := syn.Synthesize(context.Background(), "question", evidence, models.AnswerModeQA, ClassifyQuery("question"))
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}
