package models

import "fmt"

// Error codes used internally and in logs. Clients only see the message.
const (
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeMissingURL       = "MISSING_URL"
	ErrCodeInvalidDomain    = "INVALID_DOMAIN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeScrapeFailed     = "SCRAPE_FAILED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// Client-facing messages.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgMissingURL       = "Missing url query parameter"
	MsgInvalidDomain    = "Invalid URL domain"
	MsgNotFound         = "Not found"
	MsgScrapeFailed     = "Scrape failed"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// PublicMessage is the string written to the "error" field of a response:
// the fixed label, followed by the underlying error text when there is one.
func (e *ScrapeError) PublicMessage() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// ToResponse converts an internal error to the API error body.
func (e *ScrapeError) ToResponse() ErrorResponse {
	return ErrorResponse{Status: false, Error: e.PublicMessage()}
}
