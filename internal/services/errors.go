package services

import "errors"

// Service-level sentinel errors, mapped to HTTP codes by the handlers.
var (
	// Not found
	ErrStudentNotFound    = errors.New("student not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAllocationNotFound = errors.New("allocation not found")

	// Access
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrLoginDisabled = errors.New("student login is disabled")

	// Engine outcomes that are errors to the caller
	ErrAssignmentNotStarted = errors.New("assignment has not started")
	ErrValidationFailed     = errors.New("validation failed")
)
