package main

import (
	"context"
	"log"
	"os"

	"policyassist-backend/config"
	"policyassist-backend/handlers"
	"policyassist-backend/repository"
	"policyassist-backend/service"
	"policyassist-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unidoc/unipdf/v3/common/license"
	"google.golang.org/api/option"
)

func main() {
	cfg := config.Load()

	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			log.Printf("Warning: unipdf license not applied: %v", err)
		}
	}

	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	fileStorage, err := storage.New(storage.Config{
		Type:         storage.Type(cfg.StorageType),
		LocalPath:    cfg.StorageLocalPath,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	chunkRepo := repository.NewChunkRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	sectionRepo := repository.NewSectionRepository(db)

	geminiClient, err := initGemini(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}

	embedder := service.NewGeminiEmbedder(cfg)
	generator := service.NewGeminiGenerator(geminiClient, cfg)

	chunker := service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	sectionService := service.NewSectionService(generator, sectionRepo)
	synthesizer := service.NewSynthesizer(generator)
	ingestService := service.NewIngestService(chunker, embedder, chunkRepo, docRepo, fileStorage, sectionService, cfg.DefaultCollection)
	queryService := service.NewQueryService(embedder, chunkRepo, synthesizer, generator, cfg.DefaultCollection)
	diffService := service.NewDiffService(chunkRepo, generator)

	uploadHandler := handlers.NewUploadHandler(ingestService, cfg.DefaultCollection)
	queryHandler := handlers.NewQueryHandler(queryService, sectionService)
	compareHandler := handlers.NewCompareHandler(ingestService, diffService, docRepo)
	documentHandler := handlers.NewDocumentHandler(docRepo, chunkRepo, fileStorage)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		api.POST("/upload", uploadHandler.Upload)
		api.POST("/ask", queryHandler.Ask)
		api.POST("/scenario", queryHandler.Scenario)
		api.POST("/summarize", queryHandler.Summarize)
		api.GET("/sections", queryHandler.Sections)
		api.GET("/documents/:file_id", documentHandler.Get)
		api.GET("/documents/:file_id/download", documentHandler.Download)
		api.POST("/compare", compareHandler.Compare)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
		log.Println("This may be normal if extension is already installed or requires superuser privileges")
	} else {
		log.Println("pgvector extension enabled")
	}

	log.Println("Postgres connection established with pgvector support")
	return pool, nil
}

func initGemini(cfg config.Config) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
