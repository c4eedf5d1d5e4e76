package repository

import (
	"context"
	"fmt"

	"policyassist-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository is the vector index adapter: a thin boundary over the
// pgvector-backed chunk store. It does not compute embeddings or similarity
// itself; Postgres performs the nearest-neighbor search. Every query is
// scoped to a single collection, so chunks from different collections are
// never retrieved together.
type ChunkRepository struct {
	db *pgxpool.Pool
}

// NewChunkRepository creates a new chunk repository
func NewChunkRepository(db *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// Ingest stores one chunk with its embedding. Chunks are append-only; there is
// no update path.
func (r *ChunkRepository) Ingest(ctx context.Context, chunk models.Chunk, embedding []float32) error {
	query := `
		INSERT INTO chunks (chunk_id, file_id, collection, chunk_text, page, kind, sequence_index, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		chunk.ChunkID,
		chunk.FileID,
		chunk.Collection,
		chunk.Text,
		chunk.Page,
		chunk.Kind,
		chunk.SequenceIndex,
		pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// Search returns the top-k most similar chunks within one collection, with
// relevance scores in [0,1] (cosine similarity), descending.
func (r *ChunkRepository) Search(ctx context.Context, collection string, queryEmbedding []float32, k int) (models.RetrievedEvidence, error) {
	if len(queryEmbedding) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}
	if k <= 0 {
		k = 5
	}

	query := `
		SELECT chunk_id, file_id, collection, chunk_text, page, kind, sequence_index,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE collection = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, pgvector.NewVector(queryEmbedding), collection, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var evidence models.RetrievedEvidence
	for rows.Next() {
		var item models.EvidenceItem
		err := rows.Scan(
			&item.Chunk.ChunkID,
			&item.Chunk.FileID,
			&item.Chunk.Collection,
			&item.Chunk.Text,
			&item.Chunk.Page,
			&item.Chunk.Kind,
			&item.Chunk.SequenceIndex,
			&item.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		item.Score = clampScore(item.Score)
		evidence = append(evidence, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	return evidence, nil
}

// ListChunks returns every chunk of a collection with its embedding, ordered
// by document position. The diff engine walks these for nearest-match checks.
func (r *ChunkRepository) ListChunks(ctx context.Context, collection string) ([]models.StoredChunk, error) {
	query := `
		SELECT chunk_id, file_id, collection, chunk_text, page, kind, sequence_index, embedding
		FROM chunks
		WHERE collection = $1
		ORDER BY sequence_index`

	rows, err := r.db.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.StoredChunk
	for rows.Next() {
		var sc models.StoredChunk
		var vec pgvector.Vector
		err := rows.Scan(
			&sc.Chunk.ChunkID,
			&sc.Chunk.FileID,
			&sc.Chunk.Collection,
			&sc.Chunk.Text,
			&sc.Chunk.Page,
			&sc.Chunk.Kind,
			&sc.Chunk.SequenceIndex,
			&vec,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		sc.Embedding = vec.Slice()
		chunks = append(chunks, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	return chunks, nil
}

// CountChunks reports how many chunks a collection holds
func (r *ChunkRepository) CountChunks(ctx context.Context, collection string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE collection = $1`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// DeleteFile removes all chunks of one document. Used when a file is
// re-uploaded so stale vectors never survive alongside the new ones.
func (r *ChunkRepository) DeleteFile(ctx context.Context, fileID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for file %s: %w", fileID, err)
	}
	return nil
}

// DeleteCollection removes a collection and all of its chunks
func (r *ChunkRepository) DeleteCollection(ctx context.Context, collection string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE collection = $1`, collection)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
