package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hongminglow/all-in-dash/internal/models/dto"
)

// APIError is a non-success response. Envelope is either the server's error
// object or one synthesized from the status line. Credential is the one the
// rejected call carried.
type APIError struct {
	Status     int
	Envelope   dto.ErrorBody
	Credential string
}

func (e *APIError) Error() string {
	if e.Envelope.Message != "" {
		return e.Envelope.Message
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// TransportError means no response was received.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ParseError means a success response declared JSON but its body was malformed.
type ParseError struct {
	Status int
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response (status %d): %v", e.Status, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 APIError.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 APIError.
func IsForbidden(err error) bool {
	return StatusOf(err) == http.StatusForbidden
}

// RejectedCredential returns the credential carried by a 401 APIError.
func RejectedCredential(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return "", false
	}
	return apiErr.Credential, true
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
