package services

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// ErrNoSelection is returned by Confirm when no pending download
	// selection exists for the caller. A consumed selection does not replay.
	ErrNoSelection = errors.New("no pending selection")
)
