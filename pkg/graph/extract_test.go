package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/uet-rag/prospectus/internal/util"
	"github.com/uet-rag/prospectus/pkg/ai"
)

type fakeAIClient struct {
	formatCalls int
	failures    int
	response    string
	err         error

	embedding []float32
	embedErr  error
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return f.response, f.err
}

func (f *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	f.formatCalls++
	if f.formatCalls <= f.failures {
		if f.err != nil {
			return f.err
		}
		return errors.New("model unavailable")
	}
	return json.Unmarshal([]byte(f.response), out)
}

func (f *fakeAIClient) GenerateEmbedding(ctx context.Context, input string) ([]float32, error) {
	return f.embedding, f.embedErr
}

func (f *fakeAIClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = f.embedding
	}
	return out, f.embedErr
}

func (f *fakeAIClient) ResetMetrics()               {}
func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func fastRetry(retries int) util.RetryConfig {
	return util.RetryConfig{
		Retries:       retries,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 1.0,
		Jitter:        false,
	}
}

const validFragmentJSON = `{
	"nodes": [
		{"id": "department::computer_science", "type": "Department", "name": "Computer Science", "properties": {"established": 1961}},
		{"id": "degreeprogram::bsc_cs", "type": "DegreeProgram", "name": "BSc Computer Science", "properties": {}}
	],
	"edges": [
		{"source": "department::computer_science", "target": "degreeprogram::bsc_cs", "type": "OFFERS", "properties": {}}
	]
}`

func TestExtract_Success(t *testing.T) {
	client := &fakeAIClient{response: validFragmentJSON}
	e := NewExtractor(client, WithRetryConfig(fastRetry(3)))

	fragment, err := e.Extract(context.Background(), "chunk-1", "The Department of Computer Science offers a BSc.")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(fragment.Nodes) != 2 || len(fragment.Edges) != 1 {
		t.Fatalf("Extract() fragment = %d nodes, %d edges", len(fragment.Nodes), len(fragment.Edges))
	}
	if client.formatCalls != 1 {
		t.Fatalf("expected 1 model call, got %d", client.formatCalls)
	}
}

func TestExtract_RecoversAfterTransientFailures(t *testing.T) {
	client := &fakeAIClient{response: validFragmentJSON, failures: 2}
	e := NewExtractor(client, WithRetryConfig(fastRetry(3)))

	if _, err := e.Extract(context.Background(), "chunk-1", "text"); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if client.formatCalls != 3 {
		t.Fatalf("expected 3 model calls, got %d", client.formatCalls)
	}
}

func TestExtract_PermanentFailureBoundsAttempts(t *testing.T) {
	client := &fakeAIClient{response: validFragmentJSON, failures: 100}
	e := NewExtractor(client, WithRetryConfig(fastRetry(3)))

	_, err := e.Extract(context.Background(), "chunk-1", "text")
	if err == nil {
		t.Fatal("Extract() expected error")
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
	if extractionErr.ChunkID != "chunk-1" {
		t.Fatalf("ExtractionError.ChunkID = %q", extractionErr.ChunkID)
	}
	if client.formatCalls != 4 {
		t.Fatalf("expected retries+1 = 4 model calls, got %d", client.formatCalls)
	}
}

func TestExtract_SchemaInvalidFragment(t *testing.T) {
	invalid := `{"nodes": [{"id": "", "type": "Department", "name": "X"}], "edges": []}`
	client := &fakeAIClient{response: invalid}
	e := NewExtractor(client, WithRetryConfig(fastRetry(1)))

	_, err := e.Extract(context.Background(), "chunk-1", "text")
	if err == nil {
		t.Fatal("Extract() expected error for invalid fragment")
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
	if client.formatCalls != 2 {
		t.Fatalf("invalid fragments should be retried, got %d calls", client.formatCalls)
	}
}
