package query

import (
	"context"
	"fmt"

	"github.com/uet-rag/prospectus/pkg/ai"
)

// Answer is the full outcome of answering a question.
type Answer struct {
	Answer              string
	IsDepartmentRelated bool
	GuardrailReason     string
	Sources             []string
}

// Engine runs the question answering pipeline: guardrail check, hybrid
// retrieval, and answer generation.
type Engine struct {
	client    ai.Client
	retriever *HybridRetriever
	guardrail *Guardrail
	prompt    string
}

type EngineOption func(*Engine)

// WithAnswerPrompt overrides the answer generation prompt. The prompt must
// contain two %s placeholders, for context and question.
func WithAnswerPrompt(prompt string) EngineOption {
	return func(e *Engine) {
		if prompt != "" {
			e.prompt = prompt
		}
	}
}

// NewEngine creates an Engine from its three stages.
func NewEngine(client ai.Client, retriever *HybridRetriever, guardrail *Guardrail, opts ...EngineOption) *Engine {
	e := &Engine{
		client:    client,
		retriever: retriever,
		guardrail: guardrail,
		prompt:    ai.AnswerPrompt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask answers a question about the document corpus.
//
// Out-of-scope questions are declined without touching the retriever or the
// answer model. Retrieval and generation failures are returned as
// RetrievalError and GenerationError respectively so callers can map them to
// transport errors.
func (e *Engine) Ask(ctx context.Context, question string) (Answer, error) {
	guardrailResult := e.guardrail.Check(ctx, question)
	if !guardrailResult.Allowed {
		return Answer{
			Answer:              "I only answer questions about UET Lahore departments, programs, and faculty. " + guardrailResult.Reason,
			IsDepartmentRelated: false,
			GuardrailReason:     guardrailResult.Reason,
			Sources:             []string{},
		}, nil
	}

	result, err := e.retriever.Search(ctx, question)
	if err != nil {
		return Answer{}, &RetrievalError{Err: err}
	}

	if result.Context == "" {
		return Answer{
			Answer:              "I couldn't find any relevant information in the documents.",
			IsDepartmentRelated: true,
			GuardrailReason:     guardrailResult.Reason,
			Sources:             []string{},
		}, nil
	}

	content, err := e.client.GenerateCompletion(
		ctx,
		fmt.Sprintf(e.prompt, result.Context, question),
	)
	if err != nil {
		return Answer{}, &GenerationError{Err: err}
	}

	return Answer{
		Answer:              content,
		IsDepartmentRelated: true,
		GuardrailReason:     guardrailResult.Reason,
		Sources:             result.Sources,
	}, nil
}
