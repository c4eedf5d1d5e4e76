package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"policyassist-backend/config"

	"github.com/google/generative-ai-go/genai"
)

// EmbeddingProvider turns text into a fixed-length vector. Called once per
// chunk at ingest and once per query at retrieval.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LanguageModelProvider is the stateless text-in/text-out generation boundary.
type LanguageModelProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	embeddingAPI   = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	embeddingDims  = 768
	maxRetries     = 3
	initialBackoff = time.Second

	embedTimeout    = 30 * time.Second
	generateTimeout = 120 * time.Second
)

// GeminiEmbedder calls the Gemini embedContent REST API. Embedding is an
// idempotent read, so transient failures are retried with exponential backoff.
type GeminiEmbedder struct {
	apiKey string
	model  string
	client *http.Client
}

// NewGeminiEmbedder creates an embedder from configuration
func NewGeminiEmbedder(cfg config.Config) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey: cfg.GeminiAPIKey,
		model:  cfg.EmbeddingModel,
		client: &http.Client{Timeout: embedTimeout},
	}
}

type embeddingRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the L2-normalized embedding of text. Vector dimensionality is
// fixed so every collection stays internally consistent.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrIndexUnavailable)
	}

	reqBody := embeddingRequest{
		Model: e.model,
		Content: contentInput{
			Parts: []partInput{{Text: text}},
		},
		TaskType:             "RETRIEVAL_DOCUMENT",
		OutputDimensionality: embeddingDims,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", embeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp embeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode embedding response: %w", err)
				}
				continue
			}
			resp.Body.Close()
			return normalize(apiResp.Embedding.Values), nil
		}
		resp.Body.Close()

		// 400/401 will not get better on retry
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: embedding API error %d", ErrIndexUnavailable, resp.StatusCode)
		}
		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("%w: embedding API error %d after %d attempts", ErrIndexUnavailable, resp.StatusCode, maxRetries)
		}
	}

	return nil, ErrIndexUnavailable
}

func normalize(values []float64) []float32 {
	norm := 0.0
	for _, v := range values {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(values))
	for i, v := range values {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out
}

// GeminiGenerator wraps the Gemini client for grounded text generation.
// Generation is not idempotent, so a failed call is never retried silently;
// the caller sees GenerationUnavailable.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator using an initialized Gemini client
func NewGeminiGenerator(client *genai.Client, cfg config.Config) *GeminiGenerator {
	return &GeminiGenerator{
		client: client,
		model:  cfg.GenerationModel,
	}
}

// Complete sends a prompt and returns the full response text
func (g *GeminiGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: gemini client not set", ErrGenerationUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: API returned no candidates", ErrGenerationUnavailable)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			log.Printf("Warning: candidate finished with reason %v", cand.FinishReason)
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("%w: API returned empty content", ErrGenerationUnavailable)
	}
	return result, nil
}
