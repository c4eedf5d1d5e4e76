package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceFormat identifies the original format of an uploaded document
type SourceFormat string

const (
	SourceFormatPDF  SourceFormat = "pdf"
	SourceFormatText SourceFormat = "text"
)

// Document represents an uploaded policy document
type Document struct {
	FileID       uuid.UUID    `json:"file_id"`
	Filename     string       `json:"filename"`
	SourceFormat SourceFormat `json:"source_format"`
	PageCount    int          `json:"page_count"`
	Collection   string       `json:"collection"`
	StoragePath  string       `json:"storage_path"`
	CreatedAt    time.Time    `json:"created_at"`
}
