package models

import (
	"github.com/google/uuid"
)

// ChunkKind distinguishes prose passages from flattened table regions
type ChunkKind string

const (
	ChunkKindProse ChunkKind = "prose"
	ChunkKindTable ChunkKind = "table"
)

// Chunk represents a page-attributed span of document text indexed for retrieval.
// Chunks are created once at ingestion and never mutated; they are removed only
// when their owning collection is deleted.
type Chunk struct {
	ChunkID       uuid.UUID `json:"chunk_id"`
	FileID        uuid.UUID `json:"file_id"`
	Collection    string    `json:"collection"`
	Text          string    `json:"text"`
	Page          int       `json:"page"` // 1-based
	Kind          ChunkKind `json:"kind"`
	SequenceIndex int       `json:"sequence_index"`
}

// EvidenceItem is a retrieved chunk with its relevance score in [0,1].
type EvidenceItem struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievedEvidence is an ordered (descending score) sequence of retrieved chunks.
type RetrievedEvidence []EvidenceItem

// StoredChunk pairs a chunk with its stored embedding. Used by the diff engine,
// which needs every chunk of a collection together with its vector.
type StoredChunk struct {
	Chunk
	Embedding []float32
}
