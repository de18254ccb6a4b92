package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeFetch         = "FETCH_ERROR"
	ErrCodePageNotFound  = "PAGE_NOT_FOUND"
	ErrCodeInvalidPage   = "INVALID_PAGE"
	ErrCodeOutOfStock    = "OUT_OF_STOCK"
	ErrCodePriceNotFound = "PRICE_NOT_FOUND"
	ErrCodeBrowserCrash  = "BROWSER_CRASH"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LookupError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
//
// The four availability codes (PAGE_NOT_FOUND, INVALID_PAGE, OUT_OF_STOCK,
// PRICE_NOT_FOUND) are terminal per-URL outcomes, not infrastructure
// failures: a client seeing OUT_OF_STOCK should stop asking, a client
// seeing PRICE_NOT_FOUND or FETCH_ERROR may retry later.
type LookupError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError.
func NewLookupError(code, message string, err error) *LookupError {
	return &LookupError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *LookupError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
