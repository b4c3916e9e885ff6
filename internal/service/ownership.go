// Package service implements the business rules on top of the repositories.
package service

import (
	"errors"
	"fmt"
	"strings"

	"mdd/internal/auth"
	"mdd/internal/featureflags"
	"mdd/internal/models"
	"mdd/internal/validation"
)

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// requireOwner returns Forbidden unless callerID owns the resource.
func requireOwner(resource string, ownerID, callerID uint) error {
	if ownerID != callerID {
		return models.NewForbiddenError(fmt.Sprintf("You can only modify your own %s", resource))
	}
	return nil
}

// invalid wraps a validation failure as a 400 AppError.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return models.NewValidationError(strings.ToUpper(msg[:1]) + msg[1:])
}

func checkPassword(flags *featureflags.Manager, password string, userID uint) error {
	if flags.Enabled(featureflags.StrongPasswords, userID) {
		return invalid(validation.ValidateStrongPassword(password))
	}
	return invalid(validation.ValidatePassword(password))
}

// hashPassword hashes a validated password. A length rejection from the
// hasher surfaces as a validation error rather than a server fault.
func hashPassword(hasher PasswordHasher, password string) (string, error) {
	digest, err := hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", models.NewValidationError("Password is too long")
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return digest, nil
}
