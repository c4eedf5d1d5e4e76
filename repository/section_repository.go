package repository

import (
	"context"
	"fmt"

	"policyassist-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SectionRepository is the durable section-summary cache, keyed by file_id.
// Entries are written once after upload-time summarization and overwritten
// only when the same file_id is re-uploaded.
type SectionRepository struct {
	db *pgxpool.Pool
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{db: db}
}

// Get returns the cached sections for a file, ordered by first page.
// A nil slice means no cache entry exists yet.
func (r *SectionRepository) Get(ctx context.Context, fileID uuid.UUID) ([]models.Section, error) {
	query := `
		SELECT file_id, section_name, start_page, end_page, summary
		FROM sections
		WHERE file_id = $1
		ORDER BY start_page, section_index`

	rows, err := r.db.Query(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	defer rows.Close()

	return scanSections(rows)
}

// Put replaces the cached sections of a file. Concurrent writers for the same
// uncached file compute equivalent values, so last-writer-wins is safe.
func (r *SectionRepository) Put(ctx context.Context, fileID uuid.UUID, sections []models.Section) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sections WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("failed to clear old sections: %w", err)
	}

	query := `
		INSERT INTO sections (file_id, section_index, section_name, start_page, end_page, summary)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, sec := range sections {
		if _, err := tx.Exec(ctx, query, fileID, i, sec.SectionName, sec.StartPage, sec.EndPage, sec.Summary); err != nil {
			return fmt.Errorf("failed to insert section: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit sections: %w", err)
	}
	return nil
}

// Delete drops the cache entry of one file.
func (r *SectionRepository) Delete(ctx context.Context, fileID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sections WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete sections for file %s: %w", fileID, err)
	}
	return nil
}

// ListAll returns every cached section across all documents, ordered by the
// owning document's upload time, then by first page.
func (r *SectionRepository) ListAll(ctx context.Context) ([]models.Section, error) {
	query := `
		SELECT s.file_id, s.section_name, s.start_page, s.end_page, s.summary
		FROM sections s
		JOIN documents d ON d.file_id = s.file_id
		ORDER BY d.created_at, s.start_page, s.section_index`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	return scanSections(rows)
}

type sectionRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSections(rows sectionRows) ([]models.Section, error) {
	var sections []models.Section
	for rows.Next() {
		var sec models.Section
		err := rows.Scan(
			&sec.FileID,
			&sec.SectionName,
			&sec.StartPage,
			&sec.EndPage,
			&sec.Summary,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}
	return sections, nil
}
