// Package handler contains the echo handlers of the public API.
package handler

import (
	"quizdash/internal/delivery/api/middleware"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

// currentSession returns the session resolved by the session middleware.
func currentSession(c echo.Context) (*session.Entry, error) {
	entry, ok := middleware.GetSession(c)
	if !ok {
		return nil, domainerrors.ErrSessionNotFound
	}

	return entry, nil
}
