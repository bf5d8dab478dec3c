// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"quizdash/config"
	"quizdash/internal/domain/service"
	"quizdash/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionTokenType   = "session"
	sessionTokenIssuer = "quizdash"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte        // Secret key for signing session tokens.
	ttl    time.Duration // Time-to-live for session tokens.
	now    func() time.Time
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.Session == nil || cfg.Session.TokenSecret == "" {
		return nil, errors.New("session token secret must be provided")
	}

	ttl := cfg.Session.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &jwtService{
		secret: []byte(cfg.Session.TokenSecret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// GenerateSessionToken signs a token addressing the given session.
func (s *jwtService) GenerateSessionToken(sessionID uuid.UUID) (string, error) {
	now := s.now()
	claims := &service.SessionClaims{
		SessionID: sessionID,
		Type:      sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionTokenIssuer,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// ValidateSessionToken checks the validity of a session token string.
func (s *jwtService) ValidateSessionToken(tokenString string) (*service.SessionClaims, error) {
	claims := &service.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	},
		jwt.WithIssuer(sessionTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse session token")
	}

	if !token.Valid || claims.Type != sessionTokenType {
		return nil, errors.New("invalid session token")
	}

	if claims.SessionID == uuid.Nil {
		return nil, errors.New("session token has no session id")
	}

	return claims, nil
}
