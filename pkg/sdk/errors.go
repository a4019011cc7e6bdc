package agricarte

import (
	"fmt"
	"net/http"

	"github.com/cen-na/agricarte/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrAlreadyExists     = domain.ErrAlreadyExists
	ErrInvalidSiret      = domain.ErrInvalidSiret
	ErrSiretNotFound     = domain.ErrSiretNotFound
	ErrSireneUnavailable = domain.ErrSireneUnavailable
	ErrQuotaExceeded     = domain.ErrSireneQuotaExceeded
	ErrInvalidCriteria   = domain.ErrInvalidCriteria
	ErrInvalidContract   = domain.ErrInvalidContract
)

// APIError is a non-2xx answer of the agricarte API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("agricarte: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("agricarte: %d: %s", e.Status, e.Message)
}

// Unwrap maps the error code, or failing that the status, to a sentinel.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_siret":
		return ErrInvalidSiret
	case "siret_not_found":
		return ErrSiretNotFound
	case "sirene_unavailable":
		return ErrSireneUnavailable
	case "sirene_quota_exceeded":
		return ErrQuotaExceeded
	case "invalid_criteria":
		return ErrInvalidCriteria
	case "validation_failed":
		return ErrInvalidContract
	case "already_exists":
		return ErrAlreadyExists
	case "not_found":
		return ErrNotFound
	}
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case http.StatusBadGateway:
		return ErrSireneUnavailable
	}
	return nil
}
