package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"policyassist-backend/models"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// Below this top-evidence score the question is treated as unanswerable
	// from the corpus and no model call is made.
	gapThreshold = 0.35

	maxCitations       = 3
	citationExcerptLen = 200
	maxContextTokens   = 3000
	strongScore        = 0.6
)

// pageRefRe matches the inline citation form the prompts request, e.g.
// "(Page 3)" or "(page 12)".
var pageRefRe = regexp.MustCompile(`(?i)\(page\s+(\d+)\)`)

var uncertaintyMarkers = []string{
	"i'm not sure",
	"i am not sure",
	"cannot determine",
	"unable to determine",
	"not enough information",
	"insufficient information",
	"does not specify",
	"unclear",
}

// Synthesizer turns retrieved evidence into a grounded answer. It never
// invents citations: citation pages come from the evidence itself, not from
// whatever the model echoes back.
type Synthesizer struct {
	llm     LanguageModelProvider
	encoder *tiktoken.Tiktoken
}

func NewSynthesizer(llm LanguageModelProvider) *Synthesizer {
	// encoder may be nil if the BPE assets are unavailable; countTokens
	// degrades to a character estimate in that case
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &Synthesizer{llm: llm, encoder: enc}
}

func (s *Synthesizer) countTokens(text string) int {
	if s.encoder != nil {
		return len(s.encoder.Encode(text, nil, nil))
	}
	return len(text) / 4
}

// Synthesize answers a question (qa mode) or assesses a scenario (compliance
// mode) against retrieved evidence. When the evidence is too weak it
// short-circuits with GapDetected set and performs no generation call.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, evidence models.RetrievedEvidence, mode models.AnswerMode, cls models.QueryClassification) (models.GroundedResult, error) {
	if len(evidence) == 0 || evidence[0].Score < gapThreshold {
		return models.GroundedResult{
			AnswerOrOutcome: "The indexed documents do not contain enough relevant material to answer this.",
			Confidence:      models.ConfidenceLow,
			GapDetected:     true,
			Suggestion:      gapSuggestion(query, cls),
			QueryType:       cls.QueryType,
		}, nil
	}

	prompt := s.buildPrompt(query, evidence, mode)
	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return models.GroundedResult{}, fmt.Errorf("synthesize: %w", err)
	}
	answer = strings.TrimSpace(answer)

	return models.GroundedResult{
		AnswerOrOutcome: answer,
		Confidence:      deriveConfidence(answer, evidence, evidence[0].Score),
		Citations:       buildCitations(evidence),
		QueryType:       cls.QueryType,
	}, nil
}

// gapSuggestion names the kind of policy content that appears to be missing,
// based on how the query was classified.
func gapSuggestion(query string, cls models.QueryClassification) string {
	var missing string
	switch cls.QueryType {
	case models.QueryTypeNumeric:
		missing = "the amounts, limits or deadlines this asks about"
	case models.QueryTypeComparative:
		missing = "both sides of this comparison"
	case models.QueryTypeProcedural:
		missing = "the steps or process this asks about"
	default:
		missing = "this topic"
	}
	return fmt.Sprintf("No indexed policy content covers %s. Upload the document that defines %q, or rephrase the question.",
		missing, truncate(query, 80))
}

func (s *Synthesizer) buildPrompt(query string, evidence models.RetrievedEvidence, mode models.AnswerMode) string {
	var ctxBlock strings.Builder
	used := 0
	for _, item := range evidence {
		block := fmt.Sprintf("[Page %d] %s\n\n", item.Chunk.Page, item.Chunk.Text)
		cost := s.countTokens(block)
		if used+cost > maxContextTokens && used > 0 {
			break
		}
		ctxBlock.WriteString(block)
		used += cost
	}

	if mode == models.AnswerModeCompliance {
		return fmt.Sprintf(`You are a policy compliance assessor. Based ONLY on the excerpts below, state whether the described scenario is permitted, a violation, or unclear. Give the verdict first, then the reasoning, citing page numbers for every factual claim. Do not invent policy content and do not add preamble.

Excerpts:
%s
Scenario: %s

Assessment:`, ctxBlock.String(), query)
	}

	return fmt.Sprintf(`You are a document assistant. Answer the question using ONLY the excerpts below. Cite page numbers inline like (Page 3) for every factual claim. If the excerpts do not contain the answer, say so plainly. Do not invent content and do not add preamble.

Excerpts:
%s
Question: %s

Answer:`, ctxBlock.String(), query)
}

// buildCitations takes the top evidence items as citations regardless of
// what the model mentioned, so citations always point at real indexed text.
func buildCitations(evidence models.RetrievedEvidence) []models.Citation {
	n := len(evidence)
	if n > maxCitations {
		n = maxCitations
	}
	citations := make([]models.Citation, 0, n)
	for _, item := range evidence[:n] {
		citations = append(citations, models.Citation{
			Page:    item.Chunk.Page,
			Excerpt: truncate(item.Chunk.Text, citationExcerptLen),
		})
	}
	return citations
}

// deriveConfidence grades the answer by how many distinct evidence pages it
// actually references inline. Page numbers the model invents, with no backing
// evidence chunk, do not count.
func deriveConfidence(answer string, evidence models.RetrievedEvidence, topScore float64) models.Confidence {
	lower := strings.ToLower(answer)
	for _, marker := range uncertaintyMarkers {
		if strings.Contains(lower, marker) {
			return models.ConfidenceLow
		}
	}

	evidencePages := make(map[int]struct{}, len(evidence))
	for _, item := range evidence {
		evidencePages[item.Chunk.Page] = struct{}{}
	}

	cited := make(map[int]struct{})
	for _, m := range pageRefRe.FindAllStringSubmatch(answer, -1) {
		page, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := evidencePages[page]; ok {
			cited[page] = struct{}{}
		}
	}

	switch {
	case len(cited) >= 2:
		return models.ConfidenceHigh
	case len(cited) == 1:
		return models.ConfidenceMedium
	case topScore >= strongScore:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
