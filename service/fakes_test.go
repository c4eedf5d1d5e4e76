package service

import (
	"context"
	"errors"
	"io"
	"math"
	"sort"
	"strings"

	"policyassist-backend/models"
	"policyassist-backend/repository"

	"github.com/google/uuid"
)

// memoryIndex is an in-memory VectorIndex with exact cosine scoring.
type memoryIndex struct {
	chunks []models.StoredChunk
}

func (m *memoryIndex) Ingest(ctx context.Context, chunk models.Chunk, embedding []float32) error {
	m.chunks = append(m.chunks, models.StoredChunk{Chunk: chunk, Embedding: embedding})
	return nil
}

func (m *memoryIndex) Search(ctx context.Context, collection string, queryEmbedding []float32, k int) (models.RetrievedEvidence, error) {
	var evidence models.RetrievedEvidence
	for _, sc := range m.chunks {
		if sc.Collection != collection {
			continue
		}
		evidence = append(evidence, models.EvidenceItem{Chunk: sc.Chunk, Score: cosine(queryEmbedding, sc.Embedding)})
	}
	sort.SliceStable(evidence, func(i, j int) bool { return evidence[i].Score > evidence[j].Score })
	if len(evidence) > k {
		evidence = evidence[:k]
	}
	return evidence, nil
}

func (m *memoryIndex) ListChunks(ctx context.Context, collection string) ([]models.StoredChunk, error) {
	var out []models.StoredChunk
	for _, sc := range m.chunks {
		if sc.Collection == collection {
			out = append(out, sc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SequenceIndex < out[j].SequenceIndex })
	return out, nil
}

func (m *memoryIndex) CountChunks(ctx context.Context, collection string) (int, error) {
	n := 0
	for _, sc := range m.chunks {
		if sc.Collection == collection {
			n++
		}
	}
	return n, nil
}

func (m *memoryIndex) DeleteFile(ctx context.Context, fileID uuid.UUID) error {
	kept := m.chunks[:0]
	for _, sc := range m.chunks {
		if sc.FileID != fileID {
			kept = append(kept, sc)
		}
	}
	m.chunks = kept
	return nil
}

func (m *memoryIndex) DeleteCollection(ctx context.Context, collection string) error {
	kept := m.chunks[:0]
	for _, sc := range m.chunks {
		if sc.Collection != collection {
			kept = append(kept, sc)
		}
	}
	m.chunks = kept
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if s < 0 {
		return 0
	}
	return s
}

// stubEmbedder returns a fixed vector for every input.
type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

// stubLLM records prompts and returns a canned response.
type stubLLM struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// memoryDocs is an in-memory DocumentStore.
type memoryDocs struct {
	docs []models.Document
}

func (m *memoryDocs) Create(ctx context.Context, doc *models.Document) error {
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *memoryDocs) GetByID(ctx context.Context, fileID uuid.UUID) (*models.Document, error) {
	for i := range m.docs {
		if m.docs[i].FileID == fileID {
			d := m.docs[i]
			return &d, nil
		}
	}
	return nil, repository.ErrDocumentNotFound
}

func (m *memoryDocs) FindByFilename(ctx context.Context, filename, collection string) (*models.Document, error) {
	for i := len(m.docs) - 1; i >= 0; i-- {
		if m.docs[i].Filename == filename && m.docs[i].Collection == collection {
			d := m.docs[i]
			return &d, nil
		}
	}
	return nil, repository.ErrDocumentNotFound
}

func (m *memoryDocs) ListByCollection(ctx context.Context, collection string) ([]models.Document, error) {
	var out []models.Document
	for _, d := range m.docs {
		if d.Collection == collection {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryDocs) Delete(ctx context.Context, fileID uuid.UUID) error {
	kept := m.docs[:0]
	for _, d := range m.docs {
		if d.FileID != fileID {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}

func (m *memoryDocs) DeleteByCollection(ctx context.Context, collection string) error {
	kept := m.docs[:0]
	for _, d := range m.docs {
		if d.Collection != collection {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}

// memoryCache is an in-memory SectionCache.
type memoryCache struct {
	entries map[uuid.UUID][]models.Section
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[uuid.UUID][]models.Section)}
}

func (m *memoryCache) Get(ctx context.Context, fileID uuid.UUID) ([]models.Section, error) {
	return m.entries[fileID], nil
}

func (m *memoryCache) Put(ctx context.Context, fileID uuid.UUID, sections []models.Section) error {
	m.entries[fileID] = sections
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, fileID uuid.UUID) error {
	delete(m.entries, fileID)
	return nil
}

func (m *memoryCache) ListAll(ctx context.Context) ([]models.Section, error) {
	var out []models.Section
	for _, secs := range m.entries {
		out = append(out, secs...)
	}
	return out, nil
}

// memoryStorage is an in-memory storage.Storage.
type memoryStorage struct {
	files map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	path := "documents/" + fileID.String() + "/" + filename
	m.files[path] = b
	return path, nil
}

func (m *memoryStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	b, ok := m.files[storagePath]
	if !ok {
		return nil, errors.New("not stored: " + storagePath)
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (m *memoryStorage) Delete(ctx context.Context, storagePath string) error {
	delete(m.files, storagePath)
	return nil
}
