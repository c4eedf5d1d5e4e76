package main

import (
	"context"
	"log"

	"policyassist-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	schemaSQL := `
CREATE TABLE IF NOT EXISTS documents (
    file_id UUID PRIMARY KEY,
    filename VARCHAR(255) NOT NULL,
    source_format VARCHAR(10) NOT NULL CHECK (source_format IN ('pdf', 'text')),
    page_count INTEGER NOT NULL DEFAULT 0,
    collection VARCHAR(255) NOT NULL,
    storage_path TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename, collection);

CREATE TABLE IF NOT EXISTS chunks (
    chunk_id UUID PRIMARY KEY,
    file_id UUID NOT NULL REFERENCES documents(file_id) ON DELETE CASCADE,
    collection VARCHAR(255) NOT NULL,
    chunk_text TEXT NOT NULL,
    page INTEGER NOT NULL,
    kind VARCHAR(10) NOT NULL CHECK (kind IN ('prose', 'table')),
    sequence_index INTEGER NOT NULL,
    embedding vector(768) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id);

CREATE TABLE IF NOT EXISTS sections (
    file_id UUID NOT NULL REFERENCES documents(file_id) ON DELETE CASCADE,
    section_index INTEGER NOT NULL,
    section_name VARCHAR(255) NOT NULL,
    start_page INTEGER NOT NULL,
    end_page INTEGER NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (file_id, section_index)
);
`
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("✓ documents, chunks and sections tables ready")

	// ivfflat needs data to build useful lists; created up front so inserts
	// just work, Postgres falls back to exact scan while the table is small
	indexSQL := `
CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks
USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)
`
	if _, err := pool.Exec(ctx, indexSQL); err != nil {
		log.Printf("Warning: Failed to create ivfflat index: %v", err)
	} else {
		log.Println("✓ ivfflat index on chunks.embedding ready")
	}

	log.Println("Schema setup complete")
}
