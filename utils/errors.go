package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
)

var ErrResourceNotFound = errors.New("not found")
var ErrTenantNotFound = fmt.Errorf("tenant: %w", ErrResourceNotFound)
var ErrOrganizationNotFound = fmt.Errorf("organization: %w", ErrResourceNotFound)
var ErrSigningKeyNotFound = fmt.Errorf("signing key: %w", ErrResourceNotFound)
var ErrSessionNotFound = fmt.Errorf("session: %w", ErrResourceNotFound)

var ErrHttpBadRequest = errors.New("bad request")
var ErrHttpUnauthorized = errors.New("unauthorized")
var ErrHttpConflict = errors.New("conflict")
var ErrHttpTooManyRequests = errors.New("too many requests")

// HandleHttpError maps the sentinel error classes to HTTP statuses.
// Internal failures stay opaque in production.
func HandleHttpError(w http.ResponseWriter, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, ErrHttpBadRequest):
		status = http.StatusBadRequest
		msg = err.Error()

	case errors.Is(err, ErrHttpUnauthorized):
		status = http.StatusUnauthorized
		msg = err.Error()

	case errors.Is(err, ErrResourceNotFound):
		status = http.StatusNotFound
		msg = err.Error()

	case errors.Is(err, ErrHttpConflict):
		status = http.StatusConflict
		msg = err.Error()

	case errors.Is(err, ErrHttpTooManyRequests):
		status = http.StatusTooManyRequests
		msg = "too many requests"

	default:
		status = http.StatusInternalServerError
		if config.IsProduction() {
			msg = "internal server error"
		} else {
			msg = err.Error()
		}
	}

	http.Error(w, msg, status)
}

func PanicOnError(f func() error, msg string) {
	err := f()
	if err != nil {
		logging.Logger.Fatalf("%s: %v", msg, err)
	}
}
