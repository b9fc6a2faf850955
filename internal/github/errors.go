package github

import (
	"fmt"

	"emperror.dev/errors"
)

// TransportError reports a request that never produced a response: DNS,
// connection or TLS failure, or the per-request timeout.
type TransportError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError reports a non-2xx response. Message is GitHub's own "message"
// field when the body carries one, otherwise the raw body.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API returned %d: %s", e.StatusCode, e.Message)
}

// ParseError reports a response body that is not the expected JSON shape.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsAPI(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// StatusCode returns the HTTP status carried by an APIError anywhere in err's
// chain, or 0.
func StatusCode(err error) int {
	var target *APIError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}
