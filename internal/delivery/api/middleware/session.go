package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "quizdash/internal/delivery/context"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/usecase"
	"quizdash/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

const (
	bearerPrefix = "Bearer "

	// keySession is the echo context key of the resolved session.
	keySession = "session"
)

// SessionMiddleware resolves the bearer session token of a request.
type SessionMiddleware struct {
	sessions usecase.SessionUsecase
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(sessions usecase.SessionUsecase) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// Authenticate loads the session named by the Authorization header and adds
// its id to the request logger.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		token, found := strings.CutPrefix(authHeader, bearerPrefix)
		if !found || token == "" {
			return domainerrors.ErrSessionNotFound.WrapMessage("missing bearer token")
		}

		ctx := c.Request().Context()
		entry, err := m.sessions.ResolveSession(ctx, token)
		if err != nil {
			return err
		}

		if logger := deliverycontext.GetLogger(ctx); logger != nil {
			ctx = deliverycontext.WithLogger(ctx, logger.With(slog.String("session_id", entry.ID.String())))
			c.SetRequest(c.Request().WithContext(ctx))
		}

		c.Set(keySession, entry)

		return next(c)
	}
}

// GetSession returns the session resolved by Authenticate.
func GetSession(c echo.Context) (*session.Entry, bool) {
	entry, ok := c.Get(keySession).(*session.Entry)

	return entry, ok && entry != nil
}
