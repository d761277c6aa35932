package query

import "fmt"

// RetrievalError indicates that context retrieval for a question failed.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval error: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// GenerationError indicates that answer generation failed after context was
// retrieved successfully.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm error: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
