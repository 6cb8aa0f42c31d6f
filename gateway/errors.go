package gateway

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is against the typed errors below.
var (
	ErrNetwork       = errors.New("network error")
	ErrRequestFailed = errors.New("request failed")
	ErrResponseParse = errors.New("response parse error")
)

// defaultFailureMessage is reported when a failed response carries no usable detail.
const defaultFailureMessage = "Request failed"

var errInvalidJSON = errors.New("body is not valid JSON")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// RequestFailedError is a non-2xx response. Message is the backend's detail text, verbatim.
type RequestFailedError struct {
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// ResponseParseError is a 2xx response whose body could not be parsed. StatusCode is zero when
// the body was valid JSON but did not fit the expected shape.
type ResponseParseError struct {
	StatusCode int
	Err        error
}

func (e *ResponseParseError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("unparseable response: %v", e.Err)
	}
	return fmt.Sprintf("unparseable response (status %d): %v", e.StatusCode, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

func (e *ResponseParseError) Is(target error) bool { return target == ErrResponseParse }
