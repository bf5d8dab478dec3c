// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"quizdash/internal/domain/entity"
)

// ErrProfileNotFound is returned when no stored profile exists for an identity.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository persists the durable study profile of each user.
type ProfileRepository interface {
	// Get retrieves the stored profile, or ErrProfileNotFound.
	Get(ctx context.Context, uid string) (*entity.User, error)

	// Set creates or replaces the stored profile.
	Set(ctx context.Context, uid string, user *entity.User) error
}
