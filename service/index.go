package service

import (
	"context"

	"policyassist-backend/models"

	"github.com/google/uuid"
)

// VectorIndex is the narrow boundary the core consumes for chunk storage and
// top-k similarity retrieval. repository.ChunkRepository is the production
// implementation; tests use an in-memory fake.
type VectorIndex interface {
	Ingest(ctx context.Context, chunk models.Chunk, embedding []float32) error
	Search(ctx context.Context, collection string, queryEmbedding []float32, k int) (models.RetrievedEvidence, error)
	ListChunks(ctx context.Context, collection string) ([]models.StoredChunk, error)
	CountChunks(ctx context.Context, collection string) (int, error)
	DeleteFile(ctx context.Context, fileID uuid.UUID) error
	DeleteCollection(ctx context.Context, collection string) error
}

// DocumentStore persists document metadata. repository.DocumentRepository is
// the production implementation.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*models.Document, error)
	FindByFilename(ctx context.Context, filename, collection string) (*models.Document, error)
	ListByCollection(ctx context.Context, collection string) ([]models.Document, error)
	Delete(ctx context.Context, fileID uuid.UUID) error
	DeleteByCollection(ctx context.Context, collection string) error
}

// SectionCache stores per-file section summaries so repeated reads skip
// re-summarization. Get returns nil when no entry exists.
type SectionCache interface {
	Get(ctx context.Context, fileID uuid.UUID) ([]models.Section, error)
	Put(ctx context.Context, fileID uuid.UUID, sections []models.Section) error
	Delete(ctx context.Context, fileID uuid.UUID) error
	ListAll(ctx context.Context) ([]models.Section, error)
}
