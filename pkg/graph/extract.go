package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/uet-rag/prospectus/internal/util"
	"github.com/uet-rag/prospectus/pkg/ai"
	"github.com/uet-rag/prospectus/pkg/common"
)

// DefaultEntityTypes lists the entity types the extractor asks the model to
// use for prospectus content.
var DefaultEntityTypes = []string{
	"Department",
	"DegreeProgram",
	"Person",
	"EligibilityCriteria",
	"Facility",
	"Location",
}

// Extractor turns text chunks into graph fragments using structured model
// output. Transient model failures are retried with exponential backoff.
type Extractor struct {
	client      ai.Client
	retry       util.RetryConfig
	entityTypes []string
	prompt      string
}

type ExtractorOption func(*Extractor)

// WithRetryConfig overrides the retry policy for extraction calls.
func WithRetryConfig(cfg util.RetryConfig) ExtractorOption {
	return func(e *Extractor) {
		e.retry = cfg
	}
}

// WithEntityTypes overrides the entity types offered to the model.
func WithEntityTypes(types []string) ExtractorOption {
	return func(e *Extractor) {
		if len(types) > 0 {
			e.entityTypes = types
		}
	}
}

// WithExtractionPrompt overrides the extraction system prompt. The prompt
// must contain one %s placeholder for the entity type list.
func WithExtractionPrompt(prompt string) ExtractorOption {
	return func(e *Extractor) {
		if prompt != "" {
			e.prompt = prompt
		}
	}
}

// NewExtractor creates an Extractor backed by the given AI client.
func NewExtractor(client ai.Client, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		client:      client,
		retry:       util.DefaultRetryConfig(),
		entityTypes: DefaultEntityTypes,
		prompt:      ai.ExtractionPrompt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs structured extraction over a single text chunk and returns
// the resulting fragment. The whole model call is retried on failure; a
// fragment that still violates the schema after retries is an
// ExtractionError.
func (e *Extractor) Extract(ctx context.Context, chunkID string, text string) (*common.Fragment, error) {
	system := fmt.Sprintf(e.prompt, strings.Join(e.entityTypes, ", "))

	fragment, err := util.Retry(ctx, e.retry, func(ctx context.Context) (*common.Fragment, error) {
		var out common.Fragment
		err := e.client.GenerateCompletionWithFormat(
			ctx,
			"graph_fragment",
			"Entities and relationships extracted from a document chunk",
			"Text chunk: "+text,
			&out,
			ai.WithSystemPrompts(system),
		)
		if err != nil {
			return nil, err
		}
		if err := out.Validate(); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, &ExtractionError{ChunkID: chunkID, Err: err}
	}
	return fragment, nil
}
