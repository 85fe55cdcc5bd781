// Package apperrors defines the error kinds shared across services and
// handlers. Repositories return gorm.ErrRecordNotFound directly; services
// translate it into NotFoundError before it reaches a handler.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError signals bad input shape or range. The caller must fix the
// request and retry.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Detail)
}

// NewValidation builds a ValidationError for a named field.
func NewValidation(field, detail string) *ValidationError {
	return &ValidationError{Field: field, Detail: detail}
}

// NotFoundError signals that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NewNotFound builds a NotFoundError for an entity by id.
func NewNotFound(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// CycleError signals corrupted theme lineage data. It must be surfaced
// loudly, never silently truncated.
type CycleError struct {
	ThemeID uint
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected in theme lineage at theme %d", e.ThemeID)
}

// ExternalServiceError wraps a per-prompt failure of the image generator.
// Kind identifies the failure class so callers can decide whether a retry
// later is worthwhile.
type ExternalServiceError struct {
	Kind string // rate_limited, invalid_prompt, timeout, unknown
	Err  error
}

const (
	KindRateLimited   = "rate_limited"
	KindInvalidPrompt = "invalid_prompt"
	KindTimeout       = "timeout"
	KindUnknown       = "unknown"
)

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("image generator failed (%s): %v", e.Kind, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsCycle reports whether err is a CycleError.
func IsCycle(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
