package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/uet-rag/prospectus/pkg/common"
)

type fakeStore struct {
	chunks        map[string]common.Chunk
	embeddings    map[string][]float32
	merged        []string
	upsertErr     error
	mergeSkipped  int
	withoutEmbeds []common.Chunk
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chunks:     map[string]common.Chunk{},
		embeddings: map[string][]float32{},
	}
}

func (s *fakeStore) UpsertChunk(ctx context.Context, id string, text string, embedding []float32) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.chunks[id] = common.Chunk{ID: id, Text: text}
	if embedding != nil {
		s.embeddings[id] = embedding
	}
	return nil
}

func (s *fakeStore) EnsureVectorIndex(ctx context.Context, dim int) error { return nil }

func (s *fakeStore) MergeFragment(ctx context.Context, fragment *common.Fragment, chunkID string) (int, error) {
	s.merged = append(s.merged, chunkID)
	return s.mergeSkipped, nil
}

func (s *fakeStore) VectorSearch(ctx context.Context, embedding []float32, topK int) ([]common.SearchResult, error) {
	return nil, nil
}

func (s *fakeStore) EntitiesMentionedIn(ctx context.Context, chunkIDs []string) ([]common.Entity, error) {
	return nil, nil
}

func (s *fakeStore) ChunksWithoutEmbedding(ctx context.Context) ([]common.Chunk, error) {
	return s.withoutEmbeds, nil
}

func TestIngest_ProcessesAllChunks(t *testing.T) {
	client := &fakeAIClient{response: validFragmentJSON, embedding: []float32{0.1, 0.2}}
	st := newFakeStore()
	ing := NewIngestor(client, st, NewExtractor(client, WithRetryConfig(fastRetry(0))))

	chunks := []common.Chunk{
		{ID: "chunk-1", Text: "Computer Science department."},
		{ID: "chunk-2", Text: "Electrical Engineering department."},
	}

	stats, err := ing.Ingest(context.Background(), chunks)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if stats.Chunks != 2 || stats.Failed != 0 {
		t.Fatalf("Ingest() stats = %+v", stats)
	}
	if len(st.merged) != 2 {
		t.Fatalf("expected 2 merged fragments, got %d", len(st.merged))
	}
	if len(st.embeddings) != 2 {
		t.Fatalf("expected 2 stored embeddings, got %d", len(st.embeddings))
	}
}

func TestIngest_FailedChunkDoesNotBlockOthers(t *testing.T) {
	client := &fakeAIClient{response: validFragmentJSON, failures: 1, embedding: []float32{0.1}}
	st := newFakeStore()
	ing := NewIngestor(client, st, NewExtractor(client, WithRetryConfig(fastRetry(0))))

	chunks := []common.Chunk{
		{ID: "chunk-1", Text: "first"},
		{ID: "chunk-2", Text: "second"},
	}

	stats, err := ing.Ingest(context.Background(), chunks)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("expected 1 failed chunk, got %d", stats.Failed)
	}
	if len(st.merged) != 1 || st.merged[0] != "chunk-2" {
		t.Fatalf("expected only chunk-2 merged, got %v", st.merged)
	}
	// The failed chunk's text and embedding must still be persisted.
	if _, ok := st.chunks["chunk-1"]; !ok {
		t.Fatal("failed chunk was not upserted before extraction")
	}
}

func TestIngest_EmbeddingFailureSkipsChunk(t *testing.T) {
	client := &fakeAIClient{response: validFragmentJSON, embedErr: errors.New("embed down")}
	st := newFakeStore()
	ing := NewIngestor(client, st, NewExtractor(client, WithRetryConfig(fastRetry(0))))

	stats, err := ing.Ingest(context.Background(), []common.Chunk{{ID: "chunk-1", Text: "text"}})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("expected 1 failed chunk, got %d", stats.Failed)
	}
	if len(st.chunks) != 0 {
		t.Fatal("chunk should not be upserted when embedding fails")
	}
}

func TestBackfillEmbeddings(t *testing.T) {
	client := &fakeAIClient{embedding: []float32{0.5}}
	st := newFakeStore()
	st.withoutEmbeds = []common.Chunk{
		{ID: "chunk-1", Text: "one"},
		{ID: "chunk-2", Text: "two"},
	}
	ing := NewIngestor(client, st, NewExtractor(client, WithRetryConfig(fastRetry(0))))

	updated, err := ing.BackfillEmbeddings(context.Background())
	if err != nil {
		t.Fatalf("BackfillEmbeddings() error = %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updated chunks, got %d", updated)
	}
	if len(st.embeddings) != 2 {
		t.Fatalf("expected 2 embeddings stored, got %d", len(st.embeddings))
	}
}

func TestBackfillEmbeddings_Empty(t *testing.T) {
	client := &fakeAIClient{}
	st := newFakeStore()
	ing := NewIngestor(client, st, NewExtractor(client, WithRetryConfig(fastRetry(0))))

	updated, err := ing.BackfillEmbeddings(context.Background())
	if err != nil {
		t.Fatalf("BackfillEmbeddings() error = %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected 0 updated chunks, got %d", updated)
	}
}
