package scoringclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the scoring service.
type APIError struct {
	StatusCode       int
	Message          string
	Field            string
	ExpectedSequence int64
	RequestID        string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Field != "" {
		return fmt.Sprintf("scoring service: %s (status=%d field=%s)", msg, e.StatusCode, e.Field)
	}
	return fmt.Sprintf("scoring service: %s (status=%d)", msg, e.StatusCode)
}

// Retryable reports whether the same request may succeed later. Rejections
// of the submission itself never become retryable.
func (e *APIError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusTooManyRequests:
		return true
	}
	return false
}

// IsSequenceConflict reports whether the ball was submitted out of turn.
func (e *APIError) IsSequenceConflict() bool {
	return e.StatusCode == http.StatusConflict && e.ExpectedSequence > 0
}

// AsAPIError attempts to unwrap an error into an APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type errorBody struct {
	Error            string `json:"error"`
	Field            string `json:"field"`
	ExpectedSequence int64  `json:"expectedSequence"`
	RequestID        string `json:"requestId"`
}
