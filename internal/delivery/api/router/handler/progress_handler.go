package handler

import (
	"net/http"
	"time"

	"quizdash/internal/delivery/api/response"
	"quizdash/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProgressHandler serves quiz submissions and bookmarks.
type ProgressHandler struct {
	progressUC usecase.ProgressUsecase
}

// NewProgressHandler is the constructor for ProgressHandler
func NewProgressHandler(progressUC usecase.ProgressUsecase) *ProgressHandler {
	return &ProgressHandler{progressUC: progressUC}
}

// SubmissionRequest represents a finished quiz.
type SubmissionRequest struct {
	Score       float64    `json:"score" validate:"gte=0,lte=100"`
	WeakTopics  []string   `json:"weakTopics" validate:"omitempty,dive,required"`
	SubmittedAt *time.Time `json:"submittedAt"`
}

// RecordSubmission handles POST /progress/submissions
func (h *ProgressHandler) RecordSubmission(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	var req SubmissionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid submission input")
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	input := usecase.RecordSubmissionInput{
		Score:      req.Score,
		WeakTopics: req.WeakTopics,
	}
	if req.SubmittedAt != nil {
		input.SubmittedAt = *req.SubmittedAt
	}

	view, err := h.progressUC.RecordQuizSubmission(c.Request().Context(), entry, input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, view)
}

// ToggleBookmark handles POST /progress/bookmarks/:questionId
func (h *ProgressHandler) ToggleBookmark(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	out, err := h.progressUC.ToggleBookmark(c.Request().Context(), entry, c.Param("questionId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, out)
}
