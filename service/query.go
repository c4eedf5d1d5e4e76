package service

import (
	"context"
	"fmt"
	"strings"

	"policyassist-backend/models"
)

const maxSummarizeInput = 8000

// QueryService answers questions and assesses scenarios against the main
// corpus. Retrieval depth follows the lexical query classification.
type QueryService struct {
	embedder    EmbeddingProvider
	index       VectorIndex
	synthesizer *Synthesizer
	llm         LanguageModelProvider
	collection  string
}

func NewQueryService(embedder EmbeddingProvider, index VectorIndex, synthesizer *Synthesizer, llm LanguageModelProvider, collection string) *QueryService {
	return &QueryService{
		embedder:    embedder,
		index:       index,
		synthesizer: synthesizer,
		llm:         llm,
		collection:  collection,
	}
}

// Ask answers a factual question with page citations.
func (s *QueryService) Ask(ctx context.Context, question string) (models.GroundedResult, error) {
	return s.answer(ctx, question, models.AnswerModeQA)
}

// Scenario assesses a described situation against the corpus in compliance
// mode: the outcome comes first, then the grounded reasoning.
func (s *QueryService) Scenario(ctx context.Context, scenario string) (models.GroundedResult, error) {
	return s.answer(ctx, scenario, models.AnswerModeCompliance)
}

func (s *QueryService) answer(ctx context.Context, query string, mode models.AnswerMode) (models.GroundedResult, error) {
	cls := ClassifyQuery(query)

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return models.GroundedResult{}, fmt.Errorf("embed query: %w", err)
	}

	evidence, err := s.index.Search(ctx, s.collection, queryEmbedding, cls.TopK)
	if err != nil {
		return models.GroundedResult{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	return s.synthesizer.Synthesize(ctx, query, evidence, mode, cls)
}

// Summarize condenses caller-provided text in a single generation call.
func (s *QueryService) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrInvalidRequest)
	}
	if len(text) > maxSummarizeInput {
		text = text[:maxSummarizeInput]
	}

	prompt := fmt.Sprintf("Summarize the following text in a short paragraph. Keep concrete numbers, deadlines and conditions.\n\n%s", text)
	summary, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}
