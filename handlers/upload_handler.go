package handlers

import (
	"io"
	"net/http"
	"strings"

	"policyassist-backend/models"
	"policyassist-backend/service"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 20 * 1024 * 1024 // 20MB

// UploadHandler handles document ingestion requests
type UploadHandler struct {
	ingest            *service.IngestService
	defaultCollection string
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(ingest *service.IngestService, defaultCollection string) *UploadHandler {
	return &UploadHandler{ingest: ingest, defaultCollection: defaultCollection}
}

// Upload handles POST /api/upload. The file goes into the main corpus unless
// a collection form field names an isolated one (used by the compare flow).
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "A file form field is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "File exceeds the 20MB limit")
		return
	}

	collection := strings.TrimSpace(c.PostForm("collection"))
	if collection == "" {
		collection = h.defaultCollection
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Could not read the uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Could not read the uploaded file")
		return
	}

	result, err := h.ingest.Upload(c.Request.Context(), fileHeader.Filename, data, collection)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": models.UploadResponse{
			Message:          "Document ingested",
			FileID:           result.Document.FileID.String(),
			Filename:         result.Document.Filename,
			ChunksIngested:   result.ChunksIngested,
			TablesIngested:   result.TablesIngested,
			SectionsDetected: result.SectionsDetected,
		},
	})
}
