package handler

import (
	"net/http"

	"quizdash/internal/delivery/api/response"
	"quizdash/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and the number of open sessions.
type HealthHandler struct {
	registry *session.Registry
}

// NewHealthHandler is the constructor for HealthHandler
func NewHealthHandler(registry *session.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.registry.Len(),
	})
}
