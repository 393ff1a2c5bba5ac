// Package common defines shared constants, sentinel errors and small byte
// helpers used across Vinylvault components. Callers should use errors.Is to
// match the sentinel values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Crypto-level errors. Decryption failure deliberately carries no detail:
	// a wrong password and a corrupted blob must be indistinguishable.
	ErrEncryption = errors.New("encryption failed")
	ErrDecryption = errors.New("decryption failed")

	// Record-store errors.
	ErrIntegrity      = errors.New("integrity check failed")
	ErrSessionExpired = errors.New("session expired")

	// Service-level errors.
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)
