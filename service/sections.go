package service

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"policyassist-backend/models"

	"github.com/google/uuid"
)

const (
	maxHeadingLen      = 80
	minSectionTextLen  = 50
	maxSummaryInputLen = 3000
)

var numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\S`)

// SectionService detects document sections from heading heuristics and
// produces one model-generated summary per section. Results are cached per
// file so repeated listings never re-run detection or generation.
type SectionService struct {
	llm   LanguageModelProvider
	cache SectionCache
}

func NewSectionService(llm LanguageModelProvider, cache SectionCache) *SectionService {
	return &SectionService{llm: llm, cache: cache}
}

type sectionDraft struct {
	section models.Section
	text    strings.Builder
}

// headingRules are evaluated in fixed priority order per line; the first
// match wins. New heading shapes slot in as additional entries.
var headingRules = []struct {
	name  string
	match func(line string, words []string) bool
}{
	{"numbered", func(line string, _ []string) bool { return numberedHeadingRe.MatchString(line) }},
	{"allcaps", func(line string, _ []string) bool { return isAllCaps(line) }},
	{"titlecase", func(_ string, words []string) bool { return isTitleCase(words) }},
}

// isHeading accepts a line when any heading rule matches. Every rule requires
// a short line of at least two words with no trailing punctuation.
func isHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > maxHeadingLen {
		return false
	}
	if strings.ContainsAny(string(line[len(line)-1]), ".,:;!?") {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 {
		return false
	}

	for _, rule := range headingRules {
		if rule.match(line, words) {
			return true
		}
	}
	return false
}

func isAllCaps(line string) bool {
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isTitleCase(words []string) bool {
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// detectSections scans the pages line by line and opens a new section at
// every heading. A document with no headings yields a single section named
// after the file.
func detectSections(fileID uuid.UUID, filename string, pages []string) []*sectionDraft {
	var drafts []*sectionDraft
	var current *sectionDraft

	for pageIdx, page := range pages {
		pageNum := pageIdx + 1
		for _, line := range strings.Split(page, "\n") {
			if isHeading(line) {
				current = &sectionDraft{section: models.Section{
					FileID:      fileID,
					SectionName: strings.TrimSpace(line),
					StartPage:   pageNum,
					EndPage:     pageNum,
				}}
				drafts = append(drafts, current)
				continue
			}
			if current != nil {
				current.text.WriteString(line)
				current.text.WriteString("\n")
				// the range ends wherever the section's text does, even
				// when the next heading starts mid-page
				if strings.TrimSpace(line) != "" {
					current.section.EndPage = pageNum
				}
			}
		}
	}

	if len(drafts) == 0 {
		base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		d := &sectionDraft{section: models.Section{
			FileID:      fileID,
			SectionName: base,
			StartPage:   1,
			EndPage:     len(pages),
		}}
		for _, page := range pages {
			d.text.WriteString(page)
			d.text.WriteString("\n")
		}
		return []*sectionDraft{d}
	}

	return drafts
}

// BuildSections detects, summarizes and caches the sections of a freshly
// uploaded document. Summaries are best effort per section: a generation
// failure leaves that section's summary empty rather than failing the whole
// upload.
func (s *SectionService) BuildSections(ctx context.Context, fileID uuid.UUID, filename string, pages []string) ([]models.Section, error) {
	drafts := detectSections(fileID, filename, pages)

	sections := make([]models.Section, 0, len(drafts))
	for _, d := range drafts {
		text := strings.TrimSpace(d.text.String())
		switch {
		case len(text) < minSectionTextLen:
			// too short to be worth a generation call
			d.section.Summary = text
		default:
			if len(text) > maxSummaryInputLen {
				text = text[:maxSummaryInputLen]
			}
			prompt := fmt.Sprintf("Summarize the following document section titled %q in two or three sentences. Keep concrete numbers and conditions.\n\n%s", d.section.SectionName, text)
			summary, err := s.llm.Complete(ctx, prompt)
			if err == nil {
				d.section.Summary = strings.TrimSpace(summary)
			}
		}
		sections = append(sections, d.section)
	}

	if err := s.cache.Put(ctx, fileID, sections); err != nil {
		return nil, fmt.Errorf("cache sections: %w", err)
	}
	return sections, nil
}

// SectionsForFile returns the cached sections of one document.
func (s *SectionService) SectionsForFile(ctx context.Context, fileID uuid.UUID) ([]models.Section, error) {
	return s.cache.Get(ctx, fileID)
}

// AllSections returns cached sections for every indexed document, in upload
// order.
func (s *SectionService) AllSections(ctx context.Context) ([]models.Section, error) {
	return s.cache.ListAll(ctx)
}
