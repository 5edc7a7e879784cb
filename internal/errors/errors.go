// Package errors provides custom error types for the Dream Portal API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Synchronization errors.
var (
	ErrConnectionFailed = &AppError{Code: "CONNECTION_FAILED", Message: "Could not load your portal data", StatusCode: http.StatusServiceUnavailable}
	ErrSessionClosed    = &AppError{Code: "SESSION_CLOSED", Message: "Session is no longer active", StatusCode: http.StatusConflict}
	ErrItemNotFound     = &AppError{Code: "ITEM_NOT_FOUND", Message: "Dream item not found", StatusCode: http.StatusNotFound}
	ErrEventNotFound    = &AppError{Code: "EVENT_NOT_FOUND", Message: "Calendar event not found", StatusCode: http.StatusNotFound}
)

// Storage errors.
var (
	ErrStorageFull   = &AppError{Code: "STORAGE_FULL", Message: "Storage limit reached; try smaller photos or remove old items", StatusCode: http.StatusInsufficientStorage}
	ErrAssetTooLarge = &AppError{Code: "ASSET_TOO_LARGE", Message: "Image exceeds the maximum allowed size", StatusCode: http.StatusRequestEntityTooLarge}
	ErrInvalidAsset  = &AppError{Code: "INVALID_ASSET", Message: "Unsupported or malformed image data", StatusCode: http.StatusBadRequest}
)
