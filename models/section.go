package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Section represents a detected structural section of a document with its
// LLM-generated summary. Sections within one document are non-overlapping and
// ordered by first page.
type Section struct {
	FileID      uuid.UUID `json:"file_id"`
	SectionName string    `json:"section_name"`
	StartPage   int       `json:"start_page"`
	EndPage     int       `json:"end_page"`
	Summary     string    `json:"summary"`
}

// PageRange renders the inclusive page span, e.g. "3-5".
func (s Section) PageRange() string {
	return fmt.Sprintf("%d-%d", s.StartPage, s.EndPage)
}
