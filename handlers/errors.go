package handlers

import (
	"errors"
	"net/http"

	"policyassist-backend/repository"
	"policyassist-backend/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service sentinels onto the HTTP error envelope.
// Unknown errors become opaque 500s so internals never leak to clients.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		respondError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Only PDF and plain text files are supported")
	case errors.Is(err, service.ErrParseFailure):
		respondError(c, http.StatusUnprocessableEntity, "PARSE_FAILURE", "The file could not be parsed into text")
	case errors.Is(err, service.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrDocumentNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "The requested resource does not exist")
	case errors.Is(err, service.ErrIndexUnavailable):
		respondError(c, http.StatusServiceUnavailable, "INDEX_UNAVAILABLE", "The vector index is temporarily unavailable")
	case errors.Is(err, service.ErrGenerationUnavailable):
		respondError(c, http.StatusBadGateway, "GENERATION_UNAVAILABLE", "The generation backend is temporarily unavailable")
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

func respondValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "Request validation failed",
			"fields":  fields,
		},
	})
}
