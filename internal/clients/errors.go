package clients

import (
	"fmt"
	"strings"
)

// TransportError is a failed HTTP exchange: network error, timeout, or
// non-2xx status. The response body is carried for diagnostics.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SOAPFaultError is a fault embedded in an otherwise successful SOAP response
type SOAPFaultError struct {
	Code    string
	Message string
}

func (e *SOAPFaultError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("soap fault %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("soap fault: %s", e.Message)
}

// ParseError is a malformed or unexpectedly shaped payload. Non-retryable.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "unparseable payload: " + e.Reason
}

// FallbackError aggregates the causes of both failed fetch attempts
type FallbackError struct {
	Primary   error
	Secondary error
}

func (e *FallbackError) Error() string {
	parts := []string{}
	if e.Primary != nil {
		parts = append(parts, fmt.Sprintf("primary: %v", e.Primary))
	}
	if e.Secondary != nil {
		parts = append(parts, fmt.Sprintf("secondary: %v", e.Secondary))
	}
	return "all supplier clients failed: " + strings.Join(parts, "; ")
}
