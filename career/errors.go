/*
errors.go - Centralized error types for the career engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (scenario loader, API, CLI) wrap these with their own context.

ERROR CATEGORIES:
  1. Configuration errors - Fatal, the run produces nothing
  2. Roster row errors - Recovered, the row is excluded and reported
  3. Domain mismatch - Tables built for different ladders

USAGE:
  res, err := career.Simulate(cfg, input)
  if career.IsConfigError(err) {
      // reject the request, nothing was computed
  }
  for _, rowErr := range res.Roster.Excluded {
      // surface the excluded rows to the user
  }

SEE ALSO:
  - config.go: Produces ConfigError
  - roster.go: Produces RowError
*/
package career

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfiguration is returned when the ladder or allocation
	// configuration is rejected before any computation.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMalformedRosterRow marks a roster row excluded from aggregation.
	ErrMalformedRosterRow = errors.New("malformed roster row")

	// ErrGradeMismatch is returned when headcount and allocation tables
	// were built for ladders of different size.
	ErrGradeMismatch = errors.New("headcount and allocation grades differ")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError names the offending configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

func configErr(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RowErrorKind says which column made a roster row unusable.
type RowErrorKind string

const (
	RowErrorDate  RowErrorKind = "date"
	RowErrorLevel RowErrorKind = "level"
)

// RowError describes one excluded roster row.
type RowError struct {
	Line  int // 1-based line in the source file, 0 when unknown
	ID    string
	Kind  RowErrorKind
	Value string // raw cell content
	Err   error  // parse failure, if any
}

func (e *RowError) Error() string {
	msg := fmt.Sprintf("row %d (%s): unusable %s %q", e.Line, e.ID, e.Kind, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RowError) Unwrap() error {
	return ErrMalformedRosterRow
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError reports whether err rejects the configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsRowError reports whether err is a recoverable roster row problem.
func IsRowError(err error) bool {
	return errors.Is(err, ErrMalformedRosterRow)
}
