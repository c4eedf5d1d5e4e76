package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"policyassist-backend/config"
	"policyassist-backend/repository"
	"policyassist-backend/service"
	"policyassist-backend/storage"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unidoc/unipdf/v3/common/license"
	"google.golang.org/api/option"
)

// Bulk-ingests a directory of policy documents into the main corpus through
// the same pipeline the upload endpoint uses, so a fresh deployment can be
// seeded without driving the HTTP API file by file.
func main() {
	dir := flag.String("dir", "./corpus", "directory of .pdf/.txt documents to ingest")
	flag.Parse()

	cfg := config.Load()

	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			log.Printf("Warning: unipdf license not applied: %v", err)
		}
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	fileStorage, err := storage.New(storage.Config{
		Type:      storage.Type(cfg.StorageType),
		LocalPath: cfg.StorageLocalPath,
		S3Bucket:  cfg.S3Bucket,
		S3Region:  cfg.S3Region,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}

	chunkRepo := repository.NewChunkRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	sectionRepo := repository.NewSectionRepository(pool)

	embedder := service.NewGeminiEmbedder(cfg)
	generator := service.NewGeminiGenerator(geminiClient, cfg)
	chunker := service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	sections := service.NewSectionService(generator, sectionRepo)
	ingest := service.NewIngestService(chunker, embedder, chunkRepo, docRepo, fileStorage, sections, cfg.DefaultCollection)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read corpus directory %s: %v", *dir, err)
	}

	ingested, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".txt" && ext != ".text" {
			skipped++
			continue
		}

		data, err := os.ReadFile(filepath.Join(*dir, entry.Name()))
		if err != nil {
			log.Printf("✗ %s: %v", entry.Name(), err)
			continue
		}

		result, err := ingest.Upload(ctx, entry.Name(), data, cfg.DefaultCollection)
		if err != nil {
			log.Printf("✗ %s: %v", entry.Name(), err)
			continue
		}
		log.Printf("✓ %s: %d chunks, %d tables, %d sections",
			entry.Name(), result.ChunksIngested, result.TablesIngested, result.SectionsDetected)
		ingested++
	}

	log.Printf("Done: %d document(s) ingested, %d file(s) skipped", ingested, skipped)
}
