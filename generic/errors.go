/*
errors.go - Centralized error types for the indemnity engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Policy packages wrap these errors with case context.

ERROR CATEGORIES:
  1. Input errors - malformed case facts, rejected before any computation
  2. Parse errors - dates or numbers that match no known format
  3. Store errors - persistence and dataset failures

  Empty series and zero denominators are NOT errors: the accrual rules fall
  back to neutral values (ratio 1, contribution 0, no floor).

USAGE:
    if errors.Is(err, generic.ErrInvalidInput) {
        // 400 at the HTTP boundary
    }

SEE ALSO:
  - parse.go: returns ParseError
  - severance/, injury/: return InvalidInputError from Validate
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when case facts violate a precondition
	// (non-positive wage, age outside 18..100, inverted dates).
	ErrInvalidInput = errors.New("invalid input")

	// ErrParseFailure is returned when a raw value matches no accepted format.
	ErrParseFailure = errors.New("unparseable value")

	// ErrCalculationNotFound is returned when a logged calculation id is unknown.
	ErrCalculationNotFound = errors.New("calculation not found")

	// ErrUnknownDataset is returned for a dataset name outside the registry.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrMissingColumn is returned when a required logical column cannot be
	// resolved from a source header.
	ErrMissingColumn = errors.New("required column not found")

	// ErrNoSnapshot is returned when no dataset snapshot has been published yet.
	ErrNoSnapshot = errors.New("no dataset snapshot published")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError names the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// NewInvalidInput builds an InvalidInputError.
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// ParseError carries the raw text that could not be read.
type ParseError struct {
	Kind  string // "date" or "number"
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q", e.Kind, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailure
}

// MissingColumnError names the logical column and the header searched.
type MissingColumnError struct {
	Dataset string
	Column  string
	Header  []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not found in header %v", e.Dataset, e.Column, e.Header)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrUnknownDataset) ||
		errors.Is(err, ErrMissingColumn)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCalculationNotFound)
}
