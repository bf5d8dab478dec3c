package handler

import (
	"net/http"
	"strconv"

	"quizdash/internal/delivery/api/response"
	"quizdash/internal/usecase"

	"github.com/labstack/echo/v4"
)

// StreakHandler serves the milestone celebration and share endpoints.
type StreakHandler struct {
	streakUC usecase.StreakUsecase
}

// NewStreakHandler is the constructor for StreakHandler
func NewStreakHandler(streakUC usecase.StreakUsecase) *StreakHandler {
	return &StreakHandler{streakUC: streakUC}
}

// ObserveStreakRequest is a streak transition reported by the client.
type ObserveStreakRequest struct {
	PreviousStreak int `json:"previousStreak" validate:"gte=0"`
	CurrentStreak  int `json:"currentStreak" validate:"gte=0"`
}

// ObserveStreak handles POST /streak/observe
func (h *StreakHandler) ObserveStreak(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	var req ObserveStreakRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid streak input")
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	out, err := h.streakUC.ObserveStreak(c.Request().Context(), entry, usecase.ObserveStreakInput{
		PreviousStreak: req.PreviousStreak,
		CurrentStreak:  req.CurrentStreak,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, out)
}

// CloseMilestoneModal handles POST /streak/milestone/close
func (h *StreakHandler) CloseMilestoneModal(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	view, err := h.streakUC.CloseMilestoneModal(c.Request().Context(), entry)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}

// ShareStreak handles GET /streak/share and responds with a PNG QR code.
func (h *StreakHandler) ShareStreak(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	out, err := h.streakUC.ShareStreak(c.Request().Context(), entry)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	c.Response().Header().Set("X-Streak-Days", strconv.Itoa(out.Days))

	return response.PNG(c, out.PNG)
}
