package error

import (
	"errors"
)

// Validation failures are reported as booleans by the use cases; these
// sentinels cover the exceptional paths.
var (
	// ErrInsufficientBalance is returned when a user cannot cover the debit
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned when a monetary amount is zero or negative
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidUserID is returned when the user id is empty
	ErrInvalidUserID = errors.New("user ID cannot be empty")

	// ErrInvalidOrderID is returned when the order id is empty
	ErrInvalidOrderID = errors.New("order ID cannot be empty")

	// ErrInvalidResourceID is returned when the resource id is empty
	ErrInvalidResourceID = errors.New("resource ID cannot be empty")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAccountNotFound is returned when the debited account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when no transaction record exists for a tx id
	ErrTransactionNotFound = errors.New("transaction record not found")

	// ErrOrderNotFound is returned when no charging order exists for the given key
	ErrOrderNotFound = errors.New("charging order not found")

	// ErrOrderNotCompleted is returned when settlement is attempted on an unfinished order
	ErrOrderNotCompleted = errors.New("charging order is not completed")

	// ErrMissingPrecursor is returned when confirm finds no reservation to finalize.
	// Confirming nothing is a logic inconsistency, never silently absorbed.
	ErrMissingPrecursor = errors.New("no reservation to confirm")

	// ErrDuplicateKey is returned when a unique constraint is violated
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrRowLocked is returned when a row claim is held by another worker
	ErrRowLocked = errors.New("row is locked by another worker")

	// ErrDatabaseConnection is returned when the persistence store is unreachable
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrBrokerUnavailable is returned when the message broker is unreachable
	ErrBrokerUnavailable = errors.New("message broker unavailable")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// Standardized error codes returned to API clients
const (
	CodeInvalidRequest       = 1000
	CodeInvalidUserID        = 1001
	CodeInvalidAmount        = 1002
	CodeInvalidOrderID       = 1003
	CodeInvalidResourceID    = 1004
	CodeInsufficientBalance  = 2001
	CodeAccountNotFound      = 2002
	CodeTransactionNotFound  = 2003
	CodeOrderNotFound        = 2004
	CodeOrderNotCompleted    = 2005
	CodeDuplicateKey         = 3001
	CodeRowLocked            = 3002
	CodeDatabaseConnection   = 5001
	CodeBrokerUnavailable    = 5002
	CodeInternalServer       = 5000
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidOrderID):
		return CodeInvalidOrderID
	case errors.Is(err, ErrInvalidResourceID):
		return CodeInvalidResourceID
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrOrderNotFound):
		return CodeOrderNotFound
	case errors.Is(err, ErrOrderNotCompleted):
		return CodeOrderNotCompleted
	case errors.Is(err, ErrDuplicateKey):
		return CodeDuplicateKey
	case errors.Is(err, ErrRowLocked):
		return CodeRowLocked
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	case errors.Is(err, ErrBrokerUnavailable):
		return CodeBrokerUnavailable
	default:
		return CodeInternalServer
	}
}
