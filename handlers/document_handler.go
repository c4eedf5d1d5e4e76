package handlers

import (
	"fmt"
	"net/http"

	"policyassist-backend/models"
	"policyassist-backend/service"
	"policyassist-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler serves metadata and raw bytes for uploaded documents.
type DocumentHandler struct {
	docs  service.DocumentStore
	index service.VectorIndex
	files storage.Storage
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docs service.DocumentStore, index service.VectorIndex, files storage.Storage) *DocumentHandler {
	return &DocumentHandler{docs: docs, index: index, files: files}
}

// Get handles GET /api/documents/:file_id
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, ok := h.lookup(c)
	if !ok {
		return
	}

	indexed, err := h.index.CountChunks(c.Request.Context(), doc.Collection)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"document":          doc,
			"collection_chunks": indexed,
		},
	})
}

// Download handles GET /api/documents/:file_id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, ok := h.lookup(c)
	if !ok {
		return
	}

	reader, err := h.files.Download(c.Request.Context(), doc.StoragePath)
	if err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Stored document is no longer available")
		return
	}
	defer reader.Close()

	contentType := "text/plain"
	if doc.SourceFormat == models.SourceFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}

func (h *DocumentHandler) lookup(c *gin.Context) (*models.Document, bool) {
	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid file_id format")
		return nil, false
	}
	doc, err := h.docs.GetByID(c.Request.Context(), fileID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return doc, true
}
