package emailsvc

import "fmt"

// TransportError reports a failed network call: connection errors,
// timeouts, and non-success status codes. Callers treat all three the
// same way, so they are folded into one type.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("emailsvc: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a malformed payload or event line. Event-line parse
// failures are recovered locally (the line is dropped); payload-level
// failures propagate to the caller, which falls back to fixture data.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("emailsvc: %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
