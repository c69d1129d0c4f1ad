package petstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error response from the store.
type APIError struct {
	StatusCode int    `json:"-"                 yaml:"status_code"`
	Code       int    `json:"code,omitempty"    yaml:"code,omitempty"`
	Type       string `json:"type,omitempty"    yaml:"type,omitempty"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("petstore API error (status: %d)", e.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

// ParseAPIError builds an APIError from a non-2xx response body. Bodies that
// are not the store's JSON envelope keep their text as the message.
func ParseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	if len(body) == 0 {
		return apiErr
	}

	if err := json.Unmarshal(body, apiErr); err != nil {
		apiErr.Message = string(body)
	}

	apiErr.StatusCode = statusCode

	return apiErr
}

// Static errors for err113 compliance.
var (
	ErrUnknownKind         = errors.New("unknown resource kind")
	ErrInvalidRef          = errors.New("invalid resource reference")
	ErrConfigRequired      = errors.New("config is required")
	ErrBaseURLRequired     = errors.New("base URL is required")
	ErrNoHostInURL         = errors.New("no host specified in URL")
	ErrUsernameRequired    = errors.New("username is required")
	ErrPetNameRequired     = errors.New("pet name is required")
	ErrNoStatuses          = errors.New("at least one status is required")
	ErrNoUsers             = errors.New("at least one user is required")
	ErrMissingIdentifier   = errors.New("response did not carry a resource identifier")
	ErrUnexpectedLoginBody = errors.New("unexpected login response")
)

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from an HTTP response.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsBadRequest checks if the error is a bad request error.
func IsBadRequest(err error) bool {
	return StatusCode(err) == http.StatusBadRequest
}

// IsServerError checks if the error is a 5xx error.
func IsServerError(err error) bool {
	return StatusCode(err) >= http.StatusInternalServerError
}
