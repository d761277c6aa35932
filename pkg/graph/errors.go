package graph

import "fmt"

// ExtractionError indicates that graph extraction for a chunk failed after
// all retry attempts, or that the model returned a fragment violating the
// schema.
type ExtractionError struct {
	ChunkID string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for chunk %s: %v", e.ChunkID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
