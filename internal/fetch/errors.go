package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// HTTPError reports a response whose status fell outside 200-299.
//
// RawBody holds at most the first 64 KiB of the response body; anything
// beyond that is discarded and does not appear in Message either.
type HTTPError struct {
	StatusCode int
	Status     string // reason phrase, e.g. "Unauthorized"
	Message    string
	RawBody    string
}

func newHTTPError(code int, statusText, body string) *HTTPError {
	msg := fmt.Sprintf("%d %s", code, statusText)
	if strings.TrimSpace(body) != "" {
		msg = fmt.Sprintf("%d %s – %s", code, statusText, body)
	}
	return &HTTPError{
		StatusCode: code,
		Status:     statusText,
		Message:    msg,
		RawBody:    body,
	}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// TransportError reports a request that never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a successful response whose body could not be decoded.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode, true
	}
	return 0, false
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
