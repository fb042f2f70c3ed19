package shakesearch

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/shakesearch/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery    = domain.ErrEmptyQuery
	ErrQueryTooLong  = domain.ErrQueryTooLong
	ErrSearchTimeout = domain.ErrSearchTimeout
)

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	StatusCode int
	Code       string // API error code, e.g. "bad_request"; empty if the body was not an API error
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("shakesearch: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("shakesearch: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the API message back to its sentinel error, if any.
func (e *StatusError) Unwrap() error {
	for _, s := range []error{ErrEmptyQuery, ErrQueryTooLong, ErrSearchTimeout} {
		if e.Message == s.Error() {
			return s
		}
	}
	return nil
}

// IsStatus reports whether err is a *StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}
