package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key agricarte writes to the store.
const KeyPrefix = "agricarte:"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSiret signals a SIRET that is not exactly 14 digits.
	ErrInvalidSiret = errors.New("invalid siret")
	// ErrSiretNotFound signals that SIRENE knows no establishment for the SIRET.
	ErrSiretNotFound = errors.New("siret not found")
	// ErrSireneUnavailable signals an upstream SIRENE failure.
	ErrSireneUnavailable = errors.New("sirene unavailable")
	// ErrSireneQuotaExceeded signals that the configured SIRENE request budget is spent.
	ErrSireneQuotaExceeded = errors.New("sirene quota exceeded")
	// ErrInvalidCriteria signals a malformed filter criteria payload.
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrInvalidContract signals a contract that fails validation.
	ErrInvalidContract = errors.New("invalid contract")
	// ErrTermTooShort signals a search term below the minimum length.
	ErrTermTooShort = errors.New("search term too short")
)

// UpstreamError carries the HTTP status returned by an upstream provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrSireneUnavailable.Error(), e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrSireneUnavailable }

// NewUpstreamError creates an upstream error wrapping ErrSireneUnavailable.
func NewUpstreamError(status int, body string) error {
	return &UpstreamError{Status: status, Body: body}
}
