package util

import (
	"strings"
	"testing"
)

func TestSplitTokens_Empty(t *testing.T) {
	chunks, err := SplitTokens("   ", "o200k_base", 100, 10)
	if err != nil {
		t.Fatalf("SplitTokens() error = %v", err)
	}
	if chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}

func TestSplitTokens_SingleChunk(t *testing.T) {
	chunks, err := SplitTokens("Hello world.", "o200k_base", 100, 10)
	if err != nil {
		t.Fatalf("SplitTokens() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "Hello world." {
		t.Fatalf("expected single unchanged chunk, got %v", chunks)
	}
}

func TestSplitTokens_MultipleChunksCoverText(t *testing.T) {
	text := strings.Repeat("The Department of Computer Science offers undergraduate programs. ", 40)
	chunks, err := SplitTokens(text, "o200k_base", 50, 10)
	if err != nil {
		t.Fatalf("SplitTokens() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
	if !strings.Contains(chunks[0], "Department of Computer Science") {
		t.Errorf("first chunk lost content: %q", chunks[0])
	}
}

func TestSplitTokens_InvalidParams(t *testing.T) {
	if _, err := SplitTokens("text", "o200k_base", 0, 0); err == nil {
		t.Fatal("expected error for maxTokens=0")
	}
	if _, err := SplitTokens("text", "o200k_base", 10, 10); err == nil {
		t.Fatal("expected error for overlap >= maxTokens")
	}
	if _, err := SplitTokens("text", "o200k_base", 10, -1); err == nil {
		t.Fatal("expected error for negative overlap")
	}
}
