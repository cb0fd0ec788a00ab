// Package common defines shared constants and sentinel errors used across
// client and server layers of GophChat. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// AI bridge errors.
	ErrEmptyPrompt      = errors.New("no valid prompt or image data")
	ErrGenerationFailed = errors.New("generation failed")
)
