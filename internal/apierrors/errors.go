package apierrors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes mirrored from the backend's error envelope.
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	ErrCodeForbidden = "FORBIDDEN"

	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeInvalidFormat = "INVALID_FORMAT"

	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Sentinel errors shared across stores.
var (
	// ErrSessionExpired is returned when a request fails with 401 and the
	// credential refresh did not rescue it. The gateway does not clear the
	// session; the caller decides whether to log out.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden is returned before any network call when the current role
	// is not allowed to run an admin-only query.
	ErrForbidden = errors.New("access denied for current role")

	// ErrNotFound marks a missing entity. Single-entity fetches translate it
	// into a nil result instead of propagating it.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation marks client-side validation failures; never retried.
	ErrValidation = errors.New("validation failed")
)

// maxDetails caps how many field-level details render in an error message.
const maxDetails = 3

// APIError is the backend's structured error body.
type APIError struct {
	StatusCode int      `json:"-"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
}

// Error renders the server message followed by at most three details, with an
// ellipsis when more were truncated.
func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	details := e.Details
	suffix := ""
	if len(details) > maxDetails {
		details = details[:maxDetails]
		suffix = ", …"
	}
	return fmt.Sprintf("%s: %s%s", e.Message, strings.Join(details, ", "), suffix)
}

// Is maps the HTTP status onto the package sentinels so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrForbidden:
		return e.StatusCode == 403
	case ErrSessionExpired:
		return e.StatusCode == 401
	default:
		return false
	}
}

// New creates an APIError for locally raised failures that should render like
// server ones.
func New(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}
