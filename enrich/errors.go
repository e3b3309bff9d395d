package enrich

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates a timeout while issuing a lookup.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrRateLimited indicates the provider rate-limited the request.
type ErrRateLimited struct {
	Err error
}

func (e ErrRateLimited) Error() string {
	return fmt.Errorf("rate_limited: %w", e.Err).Error()
}

func (e ErrRateLimited) Unwrap() error {
	return e.Err
}

// ErrMalformed indicates an unparsable or unexpected provider payload.
type ErrMalformed struct {
	Err error
}

func (e ErrMalformed) Error() string {
	return fmt.Errorf("malformed: %w", e.Err).Error()
}

func (e ErrMalformed) Unwrap() error {
	return e.Err
}

// ErrUnauthorized indicates the provider rejected our credentials. Unlike
// the transient failures it aborts the whole enrichment phase.
type ErrUnauthorized struct {
	Err error
}

func (e ErrUnauthorized) Error() string {
	return fmt.Errorf("unauthorized: %w", e.Err).Error()
}

func (e ErrUnauthorized) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return "connection"
	}
	var rateLimited ErrRateLimited
	if errors.As(err, &rateLimited) {
		return "rate_limited"
	}
	var malformed ErrMalformed
	if errors.As(err, &malformed) {
		return "malformed"
	}
	var unauthorized ErrUnauthorized
	if errors.As(err, &unauthorized) {
		return "unauthorized"
	}
	return "other"
}

// isFatal reports whether an error must abort the enrichment phase rather
// than consume the key's retry budget.
func isFatal(err error) bool {
	var unauthorized ErrUnauthorized
	return errors.As(err, &unauthorized)
}
