package service

import (
	"context"
	"fmt"
	"strings"

	"policyassist-backend/models"
)

const (
	// A chunk with no counterpart scoring at least this is treated as
	// unique to its side.
	diffMatchThreshold = 0.70

	diffExcerptLen   = 250
	maxDiffEntries   = 20
	maxDiffPromptLen = 4000
)

// DiffService compares two isolated collections chunk by chunk using
// nearest-neighbor retrieval. No re-embedding happens: stored vectors are
// searched against the opposite collection directly.
type DiffService struct {
	index VectorIndex
	llm   LanguageModelProvider
}

func NewDiffService(index VectorIndex, llm LanguageModelProvider) *DiffService {
	return &DiffService{index: index, llm: llm}
}

// Diff reports material unique to each side. A chunk of B with no match in A
// at or above the threshold is "added in B"; a chunk of A with no match in B
// is "removed in B". Entries are capped and excerpted, common chunks are
// only counted.
func (d *DiffService) Diff(ctx context.Context, collectionA, collectionB, labelA, labelB string) (models.DiffResult, error) {
	chunksA, err := d.index.ListChunks(ctx, collectionA)
	if err != nil {
		return models.DiffResult{}, fmt.Errorf("list %s: %w", collectionA, err)
	}
	chunksB, err := d.index.ListChunks(ctx, collectionB)
	if err != nil {
		return models.DiffResult{}, fmt.Errorf("list %s: %w", collectionB, err)
	}
	if len(chunksA) == 0 {
		return models.DiffResult{}, fmt.Errorf("%w: collection %s has no indexed content", ErrNotFound, collectionA)
	}
	if len(chunksB) == 0 {
		return models.DiffResult{}, fmt.Errorf("%w: collection %s has no indexed content", ErrNotFound, collectionB)
	}

	removed, common, err := d.unmatched(ctx, chunksA, collectionB)
	if err != nil {
		return models.DiffResult{}, fmt.Errorf("diff %s against %s: %w", labelA, labelB, err)
	}
	added, _, err := d.unmatched(ctx, chunksB, collectionA)
	if err != nil {
		return models.DiffResult{}, fmt.Errorf("diff %s against %s: %w", labelB, labelA, err)
	}

	result := models.DiffResult{
		SourceA:     labelA,
		SourceB:     labelB,
		AddedInB:    added,
		RemovedInB:  removed,
		CommonCount: common,
	}
	result.Summary = d.summarize(ctx, result)
	return result, nil
}

// unmatched walks every source chunk and looks up its single nearest
// neighbor in the target collection. Returns the below-threshold entries
// (capped) plus the count of matched chunks.
func (d *DiffService) unmatched(ctx context.Context, chunks []models.StoredChunk, target string) ([]models.DiffEntry, int, error) {
	var entries []models.DiffEntry
	common := 0
	for _, chunk := range chunks {
		evidence, err := d.index.Search(ctx, target, chunk.Embedding, 1)
		if err != nil {
			return nil, 0, err
		}
		best := 0.0
		if len(evidence) > 0 {
			best = evidence[0].Score
		}
		if best >= diffMatchThreshold {
			common++
			continue
		}
		if len(entries) < maxDiffEntries {
			entries = append(entries, models.DiffEntry{
				Page:       chunk.Page,
				Excerpt:    truncate(chunk.Text, diffExcerptLen),
				Similarity: best,
			})
		}
	}
	return entries, common, nil
}

// summarize asks the model for a short narrative of the diff. Generation
// failures fall back to a plain numeric summary so a comparison never fails
// at the summary step.
func (d *DiffService) summarize(ctx context.Context, result models.DiffResult) string {
	numeric := fmt.Sprintf("%d chunk(s) added in %s, %d chunk(s) removed relative to %s, %d common.",
		len(result.AddedInB), result.SourceB, len(result.RemovedInB), result.SourceA, result.CommonCount)

	if len(result.AddedInB) == 0 && len(result.RemovedInB) == 0 {
		return "No material differences found. " + numeric
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Two document versions were compared: %q (old) and %q (new).\n\nContent only in the new version:\n", result.SourceA, result.SourceB))
	for _, e := range result.AddedInB {
		sb.WriteString(fmt.Sprintf("- (page %d) %s\n", e.Page, e.Excerpt))
	}
	sb.WriteString("\nContent only in the old version:\n")
	for _, e := range result.RemovedInB {
		sb.WriteString(fmt.Sprintf("- (page %d) %s\n", e.Page, e.Excerpt))
	}
	sb.WriteString("\nSummarize the substantive changes between the versions in a few sentences, focusing on changed obligations, amounts and time limits.")

	prompt := sb.String()
	if len(prompt) > maxDiffPromptLen {
		prompt = prompt[:maxDiffPromptLen]
	}

	summary, err := d.llm.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(summary) == "" {
		return numeric
	}
	return strings.TrimSpace(summary)
}
