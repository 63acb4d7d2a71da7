package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error with a stable machine code. HTTPStatus
// is only consulted by the optional report server; the replay path uses
// the code and the Ignorable class.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Ignorable  bool   `json:"-"` // lifecycle no-op: balances untouched, run continues
	Err        error  `json:"-"` // wrapped internal error (not exposed to clients)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// IsIgnorable reports whether err is a dispute-lifecycle mismatch that
// the engine treats as a no-op rather than a dropped event.
func IsIgnorable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Ignorable
}

// Code extracts the machine code from err, or "SYS_000" for unknown errors.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "SYS_000"
}

func ignorable(code string, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Ignorable:  true,
	}
}

// ---- Malformed input (LED 001/004/008/009) ----

func ErrInvalidAmount() *AppError {
	return New("LED_001", "Amount must be positive with at most 4 decimal places", http.StatusBadRequest)
}

func ErrDuplicateTransaction() *AppError {
	return New("LED_004", "Transaction id already recorded", http.StatusConflict)
}

func ErrMalformedEvent(err error) *AppError {
	return Wrap("LED_008", "Malformed event", http.StatusBadRequest, err)
}

func ErrClientMismatch() *AppError {
	return New("LED_009", "Referenced transaction belongs to another client", http.StatusBadRequest)
}

// ---- Business-rule violations (LED 002/003) ----

func ErrInsufficientFunds() *AppError {
	return New("LED_002", "Insufficient available funds", http.StatusPaymentRequired)
}

func ErrAccountLocked() *AppError {
	return New("LED_003", "Account is locked", http.StatusForbidden)
}

// ---- Dispute-lifecycle mismatches (LED 005-007, 010) ----
// These never change balances; the engine logs and counts them only.

func ErrUnknownTransaction() *AppError {
	return ignorable("LED_005", "Referenced transaction does not exist")
}

func ErrNotDisputed() *AppError {
	return ignorable("LED_006", "Transaction is not under dispute")
}

func ErrAlreadyDisputed() *AppError {
	return ignorable("LED_007", "Transaction is already under dispute")
}

func ErrNotDisputable() *AppError {
	return ignorable("LED_010", "Transaction cannot be disputed")
}

// ---- Lookup & system (SYS) ----

func ErrInvalidParameter(name string, err error) *AppError {
	return Wrap("SYS_400", fmt.Sprintf("Invalid %s parameter", name), http.StatusBadRequest, err)
}

func ErrNotFound(entity string) *AppError {
	return New("SYS_404", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func InternalError(err error) *AppError {
	return Wrap("SYS_500", "Internal error", http.StatusInternalServerError, err)
}
