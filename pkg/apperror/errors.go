package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
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

// Is reports whether target is an AppError with the same code, so callers
// can write errors.Is(err, apperror.ErrNotFound("account")).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
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

// Describe returns a copy of err with its client-facing message replaced.
// Errors that are not AppErrors are wrapped as internal errors first.
func Describe(err error, message string) *AppError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}
	cp := *appErr
	cp.Message = message
	return &cp
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ---- Accounts (ACC) ----

func ErrNotFound(entity string) *AppError {
	return New("ACC_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Balance operations (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient balance in account", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Amount must be positive with at most 4 decimal places", http.StatusBadRequest)
}

func ErrBalanceLimit() *AppError {
	return New("PAY_004", "Resulting balance exceeds the supported maximum", http.StatusUnprocessableEntity)
}

func ErrSameAccount() *AppError {
	return New("PAY_003", "Source and target account must differ", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimited() *AppError {
	return New("RATE_001", "Daily transaction limit reached", http.StatusTooManyRequests)
}

// ---- Queue & History (QUE / HIS) ----

func ErrEmptyQueue() *AppError {
	return New("QUE_001", "No pending transactions", http.StatusConflict)
}

func ErrEmptyHistory(op string) *AppError {
	return New("HIS_001", fmt.Sprintf("No transaction to %s", op), http.StatusConflict)
}

// ---- Request validation (REQ) ----

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}

func ErrPersistenceDisabled() *AppError {
	return New("REQ_002", "Persistence is not configured", http.StatusNotImplemented)
}

func ErrPayloadTooLarge(limit int64) *AppError {
	return New("REQ_003", fmt.Sprintf("Request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrRateLimiterUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Rate limiter unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
