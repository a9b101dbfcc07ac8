package models

import "fmt"

// Error codes used for fetch failures and API responses.
const (
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeTransport    = "TRANSPORT_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FetchError is the classified failure returned by every fetch engine.
// It implements the error interface and supports error wrapping via Unwrap.
type FetchError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(code, message string, err error) *FetchError {
	return &FetchError{Code: code, Message: message, Err: err}
}

// IsTimeout reports whether the failure was a navigation timeout.
func (e *FetchError) IsTimeout() bool {
	return e.Code == ErrCodeTimeout
}

// Note renders the failure the way it appears in report notes,
// e.g. "timeout on attempt 2" or "error: navigation".
func (e *FetchError) Note(attempt int) string {
	switch e.Code {
	case ErrCodeTimeout:
		return fmt.Sprintf("timeout on attempt %d", attempt)
	case ErrCodeNavigation:
		return "error: navigation"
	case ErrCodeBrowserCrash:
		return "error: browser"
	case ErrCodeTransport:
		return "error: transport"
	case ErrCodeNotFound:
		return "error: not found"
	default:
		return "error: " + e.Code
	}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *FetchError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
