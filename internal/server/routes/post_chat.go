package routes

import (
	"errors"
	"net/http"

	"github.com/uet-rag/prospectus/internal/server/middleware"
	"github.com/uet-rag/prospectus/pkg/query"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// ChatHandler answers a question about the document corpus.
//
// The question passes through the guardrail, hybrid retrieval, and answer
// generation. Retrieval and generation failures map to 500s with distinct
// messages; guardrail failures never surface because the guardrail fails
// open.
func ChatHandler(c echo.Context) error {
	type chatBody struct {
		Question string `json:"question" validate:"required,min=1,max=1000"`
	}

	type chatResponse struct {
		Answer              string   `json:"answer"`
		IsDepartmentRelated bool     `json:"is_department_related"`
		GuardrailReason     string   `json:"guardrail_reason"`
		Sources             []string `json:"sources"`
	}

	type errorResponse struct {
		Message string `json:"message"`
	}

	data := new(chatBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	answer, err := app.Engine.Ask(ctx, data.Question)
	if err != nil {
		var retrievalErr *query.RetrievalError
		if errors.As(err, &retrievalErr) {
			return c.JSON(http.StatusInternalServerError, errorResponse{
				Message: "Retrieval error",
			})
		}
		var generationErr *query.GenerationError
		if errors.As(err, &generationErr) {
			return c.JSON(http.StatusInternalServerError, errorResponse{
				Message: "LLM error",
			})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, chatResponse{
		Answer:              answer.Answer,
		IsDepartmentRelated: answer.IsDepartmentRelated,
		GuardrailReason:     answer.GuardrailReason,
		Sources:             answer.Sources,
	})
}
