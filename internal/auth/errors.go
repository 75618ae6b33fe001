package auth

import "errors"

var (
	// ErrMissingCredential is returned when no usable Authorization header is present.
	ErrMissingCredential = errors.New("credential required")

	// ErrInvalidCredential is returned when a credential fails verification.
	ErrInvalidCredential = errors.New("invalid credential")
)
