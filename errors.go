package livy

import (
	"fmt"
	"io"
	"net/http"
)

// StatusError represents a non-200 response from the Livy server. It wraps
// the HTTP response and carries the response body as the error message.
type StatusError struct {
	// Response is the original HTTP response.
	Response *http.Response

	// Message is the response body, if it could be read.
	Message string
}

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	return fmt.Sprintf("livy: invalid status code: %d: %s", e.Response.StatusCode, e.Message)
}

// StatusCode returns the HTTP status code of the response.
func (e *StatusError) StatusCode() int {
	return e.Response.StatusCode
}

// newStatusError creates a StatusError from an HTTP response. It reads the
// response body and closes it.
func newStatusError(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StatusError{Response: resp}
	}
	return &StatusError{
		Response: resp,
		Message:  string(body),
	}
}

// DecodeError represents a 200 response whose body did not decode into the
// expected JSON shape, including unrecognized enum tags.
type DecodeError struct {
	// Err is the underlying parse failure.
	Err error
}

// Error implements the error interface for DecodeError.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("livy: failed to decode response body: %v", e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
