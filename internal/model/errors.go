package model

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrEncryption   = errors.New("encryption failure")
	// ErrRelay is the generic failure surfaced when the store or another
	// collaborator rejects an operation; details stay in the logs.
	ErrRelay = errors.New("relay failure")
)
