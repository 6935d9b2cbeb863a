// Package errors provides custom error types for the Marketpulse API.
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

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrDuplicateEmail     = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrUserNotFound       = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Asset errors.
var (
	ErrAssetNotFound  = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrDuplicateAsset = &AppError{Code: "DUPLICATE_ASSET", Message: "An asset with this symbol and class already exists", StatusCode: http.StatusConflict}
)

// News errors.
var (
	ErrArticleNotFound = &AppError{Code: "ARTICLE_NOT_FOUND", Message: "News article not found", StatusCode: http.StatusNotFound}
)

// Provider errors. These cover the remote data and inference services the
// pipelines depend on: a resolution that exhausts every configured provider,
// a credential that was never configured, an upstream rate limit, and an
// upstream response that does not match the expected schema.
var (
	ErrUnsupportedAssetClass = &AppError{Code: "UNSUPPORTED_ASSET_CLASS", Message: "Asset class is not supported for price resolution", StatusCode: http.StatusBadRequest}
	ErrProviderUnavailable   = &AppError{Code: "PROVIDER_UNAVAILABLE", Message: "No configured provider could answer the request", StatusCode: http.StatusBadGateway}
	ErrProviderNotConfigured = &AppError{Code: "PROVIDER_NOT_CONFIGURED", Message: "Required provider credential is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrRateLimited           = &AppError{Code: "RATE_LIMITED", Message: "Upstream provider rate limit reached", StatusCode: http.StatusTooManyRequests}
	ErrMalformedResponse     = &AppError{Code: "MALFORMED_RESPONSE", Message: "Upstream provider returned an unexpected payload", StatusCode: http.StatusBadGateway}
)
