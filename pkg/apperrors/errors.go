// Package apperrors defines the error taxonomy shared across services and handlers.
package apperrors

import "errors"

var (
	// ErrParse indicates malformed or empty file content. User-correctable.
	ErrParse = errors.New("parse error")
	// ErrValidation indicates a bad request shape (missing ids, empty question).
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates an unknown dataset or query id.
	ErrNotFound = errors.New("not found")
	// ErrGeneration indicates the LLM produced no usable content.
	ErrGeneration = errors.New("generation error")
	// ErrSQLSafety indicates the SQL validator rejected a generated statement.
	// Statements carrying this error were never executed.
	ErrSQLSafety = errors.New("sql safety error")
	// ErrStorage indicates an engine-side failure during create/load/execute.
	ErrStorage = errors.New("storage error")
)
