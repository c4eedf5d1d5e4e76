package handlers

import (
	"log"
	"net/http"
	"strings"

	"policyassist-backend/models"
	"policyassist-backend/service"

	"github.com/gin-gonic/gin"
)

// CompareHandler runs the semantic diff between two isolated collections.
// The two documents are expected to have been uploaded with explicit
// collection names beforehand.
type CompareHandler struct {
	ingest *service.IngestService
	diff   *service.DiffService
	docs   service.DocumentStore
}

// NewCompareHandler creates a new compare handler
func NewCompareHandler(ingest *service.IngestService, diff *service.DiffService, docs service.DocumentStore) *CompareHandler {
	return &CompareHandler{ingest: ingest, diff: diff, docs: docs}
}

// Compare handles POST /api/compare
func (h *CompareHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}
	if fields := req.Validate(); fields != nil {
		respondValidationError(c, fields)
		return
	}

	ctx := c.Request.Context()
	labelA := h.collectionLabel(c, req.CollectionA)
	labelB := h.collectionLabel(c, req.CollectionB)

	result, err := h.diff.Diff(ctx, req.CollectionA, req.CollectionB, labelA, labelB)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// compare collections are single-use; drop them once the diff is out
	for _, collection := range []string{req.CollectionA, req.CollectionB} {
		if err := h.ingest.DropCollection(ctx, collection); err != nil {
			log.Printf("cleanup of compare collection %s failed: %v", collection, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// collectionLabel prefers the uploaded filename over the raw collection name
// so diff output reads naturally.
func (h *CompareHandler) collectionLabel(c *gin.Context, collection string) string {
	docs, err := h.docs.ListByCollection(c.Request.Context(), collection)
	if err != nil || len(docs) == 0 {
		return collection
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Filename)
	}
	return strings.Join(names, ", ")
}
