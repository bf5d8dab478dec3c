package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"quizdash/internal/delivery/api/response"
	"quizdash/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SessionHandlerParams holds dependencies for SessionHandler, injected by Fx.
type SessionHandlerParams struct {
	fx.In

	SessionUC usecase.SessionUsecase
	Logger    *slog.Logger
}

// SessionHandler serves the session and authentication endpoints.
type SessionHandler struct {
	sessionUC usecase.SessionUsecase
	logger    *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler
func NewSessionHandler(params SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		sessionUC: params.SessionUC,
		logger:    params.Logger,
	}
}

// OpenSessionResponse carries the bearer token of a new session.
type OpenSessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

// LoginRequest represents the request body for email and password sign-in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for account creation
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// IDTokenRequest carries an ID token issued to the client.
type IDTokenRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// OpenSession handles POST /sessions
func (h *SessionHandler) OpenSession(c echo.Context) error {
	out, err := h.sessionUC.OpenSession(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, OpenSessionResponse{
		SessionID: out.SessionID.String(),
		Token:     out.Token,
		ExpiresIn: int64(out.ExpiresIn.Seconds()),
	})
}

// GetSession handles GET /session. With ?wait=true it answers once pending
// identity events are reconciled.
func (h *SessionHandler) GetSession(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	get := h.sessionUC.GetSession
	if wait, _ := strconv.ParseBool(c.QueryParam("wait")); wait {
		get = h.sessionUC.WaitSession
	}

	view, err := get(c.Request().Context(), entry)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}

// CloseSession handles DELETE /session
func (h *SessionHandler) CloseSession(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	if err := h.sessionUC.CloseSession(c.Request().Context(), entry); err != nil {
		return response.HandleAppError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RefreshSession handles POST /session/refresh
func (h *SessionHandler) RefreshSession(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	view, err := h.sessionUC.RefreshSession(c.Request().Context(), entry)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}

// Restore handles POST /session/restore
func (h *SessionHandler) Restore(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	var req IDTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid restore input")
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	view, err := h.sessionUC.Restore(c.Request().Context(), entry, req.IDToken)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}

// Login handles POST /auth/login
func (h *SessionHandler) Login(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	view, err := h.sessionUC.Login(c.Request().Context(), entry, usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}

// Register handles POST /auth/register
func (h *SessionHandler) Register(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	view, err := h.sessionUC.Register(c.Request().Context(), entry, usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, view)
}

// LoginWithGoogle handles POST /auth/google
func (h *SessionHandler) LoginWithGoogle(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	var req IDTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid Google sign-in input")
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	view, err := h.sessionUC.LoginWithGoogle(c.Request().Context(), entry, req.IDToken)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}

// LoginAsGuest handles POST /auth/guest
func (h *SessionHandler) LoginAsGuest(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	view, err := h.sessionUC.LoginAsGuest(c.Request().Context(), entry)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}

// Logout handles POST /auth/logout
func (h *SessionHandler) Logout(c echo.Context) error {
	entry, err := currentSession(c)
	if err != nil {
		return err
	}

	view, err := h.sessionUC.Logout(c.Request().Context(), entry)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view)
}
