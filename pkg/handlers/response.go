// Package handlers contains the HTTP endpoints of the service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Jmatos87/queryflow/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError maps a service error to an HTTP status and writes it. The
// message intentionally exposes only the error text, not storage internals.
func WriteError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, apperrors.ErrParse):
		return ErrorResponse(w, http.StatusBadRequest, "parse_error", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrGeneration):
		return ErrorResponse(w, http.StatusBadGateway, "generation_error", err.Error())
	case errors.Is(err, apperrors.ErrSQLSafety):
		return ErrorResponse(w, http.StatusInternalServerError, "sql_rejected", err.Error())
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
	}
}
