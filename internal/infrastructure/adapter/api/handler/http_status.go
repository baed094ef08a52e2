package handler

import (
	"errors"
	"net/http"

	domainerr "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
)

// httpStatus maps domain errors onto HTTP status codes
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrInvalidRequest),
		errors.Is(err, domainerr.ErrInvalidUserID),
		errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrInvalidOrderID),
		errors.Is(err, domainerr.ErrInvalidResourceID):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrAccountNotFound),
		errors.Is(err, domainerr.ErrTransactionNotFound),
		errors.Is(err, domainerr.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerr.ErrOrderNotCompleted),
		errors.Is(err, domainerr.ErrDuplicateKey),
		errors.Is(err, domainerr.ErrRowLocked):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrDatabaseConnection),
		errors.Is(err, domainerr.ErrBrokerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
