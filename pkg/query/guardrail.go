package query

import (
	"context"
	"fmt"

	"github.com/uet-rag/prospectus/pkg/ai"
	"github.com/uet-rag/prospectus/pkg/logger"
)

// GuardrailResult is the structured classification of a question.
type GuardrailResult struct {
	Allowed bool   `json:"is_allowed" jsonschema_description:"True if the question is about UET departments, programs, faculty, or admissions"`
	Reason  string `json:"reason" jsonschema_description:"Brief explanation of the classification"`
}

// Guardrail classifies whether a question is in scope for the prospectus
// assistant. A disabled guardrail always allows; a failing guardrail check
// fails open and allows as well.
type Guardrail struct {
	client  ai.Client
	enabled bool
	prompt  string
}

type GuardrailOption func(*Guardrail)

// WithGuardrailPrompt overrides the classification prompt. The prompt must
// contain one %s placeholder for the question.
func WithGuardrailPrompt(prompt string) GuardrailOption {
	return func(g *Guardrail) {
		if prompt != "" {
			g.prompt = prompt
		}
	}
}

// NewGuardrail creates a Guardrail. When enabled is false, Check never calls
// the model.
func NewGuardrail(client ai.Client, enabled bool, opts ...GuardrailOption) *Guardrail {
	g := &Guardrail{client: client, enabled: enabled, prompt: ai.GuardrailPrompt}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check classifies the question. It never returns an error: classification
// failures are logged and treated as allowed.
func (g *Guardrail) Check(ctx context.Context, question string) GuardrailResult {
	if !g.enabled {
		return GuardrailResult{Allowed: true, Reason: "Guardrail disabled"}
	}

	var result GuardrailResult
	err := g.client.GenerateCompletionWithFormat(
		ctx,
		"guardrail_result",
		"Classification of whether a question is in scope",
		fmt.Sprintf(g.prompt, question),
		&result,
	)
	if err != nil {
		logger.Error("[Query][Guardrail] Check failed, allowing by default", "err", err)
		return GuardrailResult{
			Allowed: true,
			Reason:  "Guardrail check failed, allowing by default",
		}
	}
	return result
}
