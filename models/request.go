package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validater is implemented by request bodies that can validate themselves
type Validater interface {
	Validate() map[string]string
}

var validate = validator.New()

func validateStruct(v interface{}) map[string]string {
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		fields := make(map[string]string)
		for _, e := range errs {
			fields[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return fields
	}
	return nil
}

// AskRequest is the body of POST /api/ask
type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

func (r *AskRequest) Validate() map[string]string { return validateStruct(r) }

// ScenarioRequest is the body of POST /api/scenario
type ScenarioRequest struct {
	Scenario string `json:"scenario" validate:"required"`
}

func (r *ScenarioRequest) Validate() map[string]string { return validateStruct(r) }

// SummarizeRequest is the body of POST /api/summarize
type SummarizeRequest struct {
	Text string `json:"text" validate:"required"`
}

func (r *SummarizeRequest) Validate() map[string]string { return validateStruct(r) }

// CompareRequest names the two isolated collections to diff
type CompareRequest struct {
	CollectionA string `json:"collection_a" validate:"required"`
	CollectionB string `json:"collection_b" validate:"required,nefield=CollectionA"`
}

func (r *CompareRequest) Validate() map[string]string { return validateStruct(r) }

// UploadResponse reports what was ingested for one uploaded document
type UploadResponse struct {
	Message          string `json:"message"`
	FileID           string `json:"file_id"`
	Filename         string `json:"filename"`
	ChunksIngested   int    `json:"chunks_ingested"`
	TablesIngested   int    `json:"tables_ingested"`
	SectionsDetected int    `json:"sections_detected"`
}

// SectionInfo is the wire form of a section summary
type SectionInfo struct {
	SectionName string `json:"section_name"`
	Summary     string `json:"summary"`
	PageRange   string `json:"page_range"`
}
