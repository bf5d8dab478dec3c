package postgres

import (
	"strings"

	"quizdash/internal/errors"

	"gorm.io/gorm"
)

// Helper functions for PostgreSQL error checking
func isCheckConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	// PostgreSQL check_violation error code
	return strings.Contains(err.Error(), "23514")
}

func isNotNullConstraintViolation(err error) bool {
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "23502") // PostgreSQL not_null_violation error code
}
