package util

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// SplitTokens splits text into chunks of at most maxTokens tokens, with
// overlapTokens tokens of overlap between consecutive chunks. Chunks are
// decoded back to text, so boundaries fall on token edges, not rune edges.
// Overlap must be smaller than maxTokens.
func SplitTokens(text string, encoding string, maxTokens, overlapTokens int) ([]string, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("maxTokens must be positive, got %d", maxTokens)
	}
	if overlapTokens < 0 || overlapTokens >= maxTokens {
		return nil, fmt.Errorf("overlap %d out of range for maxTokens %d", overlapTokens, maxTokens)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", encoding, err)
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return []string{text}, nil
	}

	step := maxTokens - overlapTokens
	chunks := make([]string, 0, (len(tokens)+step-1)/step)
	for start := 0; start < len(tokens); start += step {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := strings.TrimSpace(enc.Decode(tokens[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}
