package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims defines the custom claims of a session token.
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	Type      string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the bearer tokens that address client sessions.
type TokenService interface {
	// GenerateSessionToken signs a token for the given session.
	GenerateSessionToken(sessionID uuid.UUID) (string, error)

	// ValidateSessionToken checks the signature, expiry and type of a token.
	ValidateSessionToken(tokenString string) (*SessionClaims, error)
}
