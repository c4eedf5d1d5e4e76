package repository

import (
	"context"
	"errors"
	"fmt"

	"policyassist-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDocumentNotFound is returned when a file_id has no document row
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document row. Documents are immutable once created.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (file_id, filename, source_format, page_count, collection, storage_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		doc.FileID,
		doc.Filename,
		doc.SourceFormat,
		doc.PageCount,
		doc.Collection,
		doc.StoragePath,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by file_id
func (r *DocumentRepository) GetByID(ctx context.Context, fileID uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT file_id, filename, source_format, page_count, collection, storage_path, created_at
		FROM documents
		WHERE file_id = $1`

	err := r.db.QueryRow(ctx, query, fileID).Scan(
		&doc.FileID,
		&doc.Filename,
		&doc.SourceFormat,
		&doc.PageCount,
		&doc.Collection,
		&doc.StoragePath,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// ListByCollection returns the documents of one collection in upload order
func (r *DocumentRepository) ListByCollection(ctx context.Context, collection string) ([]models.Document, error) {
	query := `
		SELECT file_id, filename, source_format, page_count, collection, storage_path, created_at
		FROM documents
		WHERE collection = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.FileID,
			&doc.Filename,
			&doc.SourceFormat,
			&doc.PageCount,
			&doc.Collection,
			&doc.StoragePath,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// FindByFilename looks up a document by filename within one collection.
// Returns ErrDocumentNotFound when no such document exists.
func (r *DocumentRepository) FindByFilename(ctx context.Context, filename, collection string) (*models.Document, error) {
	query := `
		SELECT file_id, filename, source_format, page_count, collection, storage_path, created_at
		FROM documents
		WHERE filename = $1 AND collection = $2
		ORDER BY created_at DESC
		LIMIT 1`

	doc := &models.Document{}
	err := r.db.QueryRow(ctx, query, filename, collection).Scan(
		&doc.FileID,
		&doc.Filename,
		&doc.SourceFormat,
		&doc.PageCount,
		&doc.Collection,
		&doc.StoragePath,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document %s: %w", filename, err)
	}
	return doc, nil
}

// Delete removes one document row.
func (r *DocumentRepository) Delete(ctx context.Context, fileID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", fileID, err)
	}
	return nil
}

// DeleteByCollection removes the document rows of a collection. Used when a
// short-lived compare collection is cleaned up after a diff.
func (r *DocumentRepository) DeleteByCollection(ctx context.Context, collection string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return fmt.Errorf("failed to delete documents for collection %s: %w", collection, err)
	}
	return nil
}
