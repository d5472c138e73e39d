package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-storefront/logger"
)

// ErrorKind is the machine-readable class of a failure
type ErrorKind string

const (
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindNotFound         ErrorKind = "not_found"
	KindValidation       ErrorKind = "validation_failed"
	KindConflict         ErrorKind = "conflict"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindInternal         ErrorKind = "internal"
)

// AppError is an error with a kind and a message that is safe to show clients.
// Err holds internal detail and is only logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	ReAuth  bool
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func Unauthenticated(msg string, reauth bool) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: msg, ReAuth: reauth}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: msg}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func Validation(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

func Conflict(msg string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: msg, Err: err}
}

// Unavailable wraps a backend failure
func Unavailable(msg string, err error) *AppError {
	return &AppError{Kind: KindStoreUnavailable, Message: msg, Err: err}
}

// Internal wraps a failure that has no better class
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf returns the kind of err. Errors that are not an AppError are internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusFor maps an error kind onto an HTTP status code
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Kind           ErrorKind `json:"kind"`
	Message        string    `json:"message"`
	RequiresReauth bool      `json:"requiresReauth,omitempty"`
}

// WriteError writes err as an ErrorResponse. Internal detail is logged only.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	status := StatusFor(appErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.Logger.Error().Err(appErr.Err).Str("kind", string(appErr.Kind)).Msg(appErr.Message)
	}

	WriteJSON(w, status, ErrorResponse{
		Kind:           appErr.Kind,
		Message:        appErr.Message,
		RequiresReauth: appErr.ReAuth,
	})
}

// WriteJSON encodes v with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
