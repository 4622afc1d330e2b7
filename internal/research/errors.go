package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQuery is returned when a request is attempted without query text.
var ErrEmptyQuery = &ValidationError{Field: "query", Reason: "is empty"}

// ValidationError rejects a request before anything is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// TransportError wraps failures that prevented a response from arriving:
// connection errors, timeouts and cancellation.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("execute request: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response. Body is the raw response text,
// possibly empty when it could not be read.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = genericFailure
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// MalformedResponseError reports a 2xx body that is not a JSON object.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return malformedMessage
	}
	return fmt.Sprintf("%s: %v", malformedMessage, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

const (
	genericFailure   = "request failed"
	malformedMessage = "invalid response from analysis service"
	maxMessageLen    = 300
)

// Message extracts the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	var transportErr *TransportError
	var malformedErr *MalformedResponseError
	var validationErr *ValidationError

	switch {
	case errors.As(err, &httpErr):
		return truncate(httpErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &malformedErr):
		return malformedMessage
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &transportErr):
		return truncate(fmt.Sprintf("could not reach analysis service: %v", rootCause(transportErr.Err)))
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return genericFailure
	}
	return truncate(msg)
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxMessageLen {
		return s
	}
	return string(runes[:maxMessageLen-1]) + "…"
}
