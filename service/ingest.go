package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"policyassist-backend/models"
	"policyassist-backend/repository"
	"policyassist-backend/storage"

	"github.com/google/uuid"
)

// IngestService runs the upload pipeline: format detection, page extraction,
// chunking, table extraction, embedding, vector ingestion and (for the main
// corpus) section detection. Compare collections get the same pipeline minus
// the section pass.
type IngestService struct {
	chunker           *Chunker
	embedder          EmbeddingProvider
	index             VectorIndex
	docs              DocumentStore
	files             storage.Storage
	sections          *SectionService
	defaultCollection string
}

func NewIngestService(
	chunker *Chunker,
	embedder EmbeddingProvider,
	index VectorIndex,
	docs DocumentStore,
	files storage.Storage,
	sections *SectionService,
	defaultCollection string,
) *IngestService {
	return &IngestService{
		chunker:           chunker,
		embedder:          embedder,
		index:             index,
		docs:              docs,
		files:             files,
		sections:          sections,
		defaultCollection: defaultCollection,
	}
}

// IngestResult reports what one upload produced.
type IngestResult struct {
	Document         models.Document
	ChunksIngested   int
	TablesIngested   int
	SectionsDetected int
}

// Upload ingests one document into the named collection. Re-uploading a
// filename into the main corpus replaces the previous version: its chunks,
// document row and cached sections are removed before the new ones land, so
// retrieval never mixes versions.
func (s *IngestService) Upload(ctx context.Context, filename string, data []byte, collection string) (*IngestResult, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	pages, err := ExtractPages(data, format)
	if err != nil {
		return nil, err
	}

	if collection == s.defaultCollection {
		if err := s.invalidatePrevious(ctx, filename, collection); err != nil {
			return nil, err
		}
	}

	fileID := uuid.New()
	storagePath, err := s.files.Upload(ctx, fileID, filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store raw file: %w", err)
	}

	doc := models.Document{
		FileID:       fileID,
		Filename:     filename,
		SourceFormat: format,
		PageCount:    len(pages),
		Collection:   collection,
		StoragePath:  storagePath,
	}
	if err := s.docs.Create(ctx, &doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	prose := s.chunker.Chunk(pages, fileID, collection)
	tables := ExtractTables(pages, fileID, collection, len(prose))

	for _, chunk := range append(prose, tables...) {
		embedding, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, err
		}
		if err := s.index.Ingest(ctx, chunk, embedding); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}
	}

	result := &IngestResult{
		Document:       doc,
		ChunksIngested: len(prose),
		TablesIngested: len(tables),
	}

	if collection == s.defaultCollection && s.sections != nil {
		sections, err := s.sections.BuildSections(ctx, fileID, filename, pages)
		if err != nil {
			// retrieval still works without the section cache
			log.Printf("section build failed for %s: %v", filename, err)
		} else {
			result.SectionsDetected = len(sections)
		}
	}

	return result, nil
}

func (s *IngestService) invalidatePrevious(ctx context.Context, filename, collection string) error {
	prev, err := s.docs.FindByFilename(ctx, filename, collection)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil
		}
		return fmt.Errorf("lookup previous upload: %w", err)
	}

	if err := s.index.DeleteFile(ctx, prev.FileID); err != nil {
		return fmt.Errorf("drop stale chunks: %w", err)
	}
	if s.sections != nil {
		if err := s.sections.cache.Delete(ctx, prev.FileID); err != nil {
			return fmt.Errorf("drop stale sections: %w", err)
		}
	}
	if err := s.docs.Delete(ctx, prev.FileID); err != nil {
		return fmt.Errorf("drop stale document: %w", err)
	}
	if prev.StoragePath != "" {
		if err := s.files.Delete(ctx, prev.StoragePath); err != nil {
			log.Printf("could not remove stored file %s: %v", prev.StoragePath, err)
		}
	}
	return nil
}

// DropCollection removes every trace of a collection: vectors, document rows
// and stored files. Compare collections go through this after a diff.
func (s *IngestService) DropCollection(ctx context.Context, collection string) error {
	docs, err := s.docs.ListByCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("list collection %s: %w", collection, err)
	}
	for _, doc := range docs {
		if doc.StoragePath == "" {
			continue
		}
		if err := s.files.Delete(ctx, doc.StoragePath); err != nil {
			log.Printf("could not remove stored file %s: %v", doc.StoragePath, err)
		}
	}
	if err := s.index.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("delete collection vectors: %w", err)
	}
	if err := s.docs.DeleteByCollection(ctx, collection); err != nil {
		return fmt.Errorf("delete collection documents: %w", err)
	}
	return nil
}
