package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage keeps the raw bytes of uploaded documents so they can be
// re-extracted or audited later. Parsed text and vectors live in Postgres;
// this layer only holds the originals.
type Storage interface {
	// Upload stores a document and returns its storage path
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a stored document by its storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a stored document
	Delete(ctx context.Context, storagePath string) error
}

// Type selects the storage backend
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config holds backend selection and its settings
type Config struct {
	Type         Type
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates the storage backend named by the configuration.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// documentPath builds the object key for a document. The file_id keeps keys
// unique across re-uploads of the same filename.
func documentPath(fileID uuid.UUID, filename string) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("documents/%s/%s", fileID, base)
}
