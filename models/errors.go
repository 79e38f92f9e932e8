package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout             = "SCRAPE_TIMEOUT"
	ErrCodeNavigation          = "NAVIGATION_FAILED"
	ErrCodeChallengeUnresolved = "CHALLENGE_UNRESOLVED"
	ErrCodeConsentDismiss      = "CONSENT_DISMISS_FAILED"
	ErrCodeConsentStep         = "CONSENT_STEP_FAILED"
	ErrCodeSiteRun             = "SITE_RUN_FAILED"
	ErrCodeBrowserCrash        = "BROWSER_CRASH"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MenuError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type MenuError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *MenuError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MenuError) Unwrap() error {
	return e.Err
}

// NewMenuError creates a new MenuError.
func NewMenuError(code, message string, err error) *MenuError {
	return &MenuError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *MenuError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
