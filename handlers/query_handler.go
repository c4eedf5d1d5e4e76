package handlers

import (
	"net/http"

	"policyassist-backend/models"
	"policyassist-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QueryHandler handles question answering, scenario assessment, free-text
// summarization and section listing
type QueryHandler struct {
	queries  *service.QueryService
	sections *service.SectionService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queries *service.QueryService, sections *service.SectionService) *QueryHandler {
	return &QueryHandler{queries: queries, sections: sections}
}

// Ask handles POST /api/ask
func (h *QueryHandler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if fields := req.Validate(); fields != nil {
		respondValidationError(c, fields)
		return
	}

	result, err := h.queries.Ask(c.Request.Context(), req.Question)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondGrounded(c, result, "answer")
}

// Scenario handles POST /api/scenario
func (h *QueryHandler) Scenario(c *gin.Context) {
	var req models.ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if fields := req.Validate(); fields != nil {
		respondValidationError(c, fields)
		return
	}

	result, err := h.queries.Scenario(c.Request.Context(), req.Scenario)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondGrounded(c, result, "outcome")
}

func respondGrounded(c *gin.Context, result models.GroundedResult, answerKey string) {
	citations := result.Citations
	if citations == nil {
		citations = []models.Citation{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			answerKey:      result.AnswerOrOutcome,
			"confidence":   result.Confidence,
			"citations":    citations,
			"gap_detected": result.GapDetected,
			"suggestion":   result.Suggestion,
			"query_type":   result.QueryType,
		},
	})
}

// Summarize handles POST /api/summarize
func (h *QueryHandler) Summarize(c *gin.Context) {
	var req models.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if fields := req.Validate(); fields != nil {
		respondValidationError(c, fields)
		return
	}

	summary, err := h.queries.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"summary": summary},
	})
}

// Sections handles GET /api/sections. With a file_id query parameter it
// returns that document's sections, otherwise sections for every document in
// the main corpus.
func (h *QueryHandler) Sections(c *gin.Context) {
	var (
		sections []models.Section
		err      error
	)

	if idStr := c.Query("file_id"); idStr != "" {
		fileID, parseErr := uuid.Parse(idStr)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid file_id format")
			return
		}
		sections, err = h.sections.SectionsForFile(c.Request.Context(), fileID)
		if err == nil && len(sections) == 0 {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "No sections cached for this file")
			return
		}
	} else {
		sections, err = h.sections.AllSections(c.Request.Context())
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	infos := make([]models.SectionInfo, 0, len(sections))
	for _, sec := range sections {
		infos = append(infos, models.SectionInfo{
			SectionName: sec.SectionName,
			Summary:     sec.Summary,
			PageRange:   sec.PageRange(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"sections": infos},
	})
}
