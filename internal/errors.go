package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeForbidden   ErrorType = "FORBIDDEN"
	ErrorTypeConflict    ErrorType = "CONFLICT"
	ErrorTypeStructural  ErrorType = "STRUCTURAL_ERROR"
	ErrorTypeTransient   ErrorType = "TRANSIENT_ERROR"
	ErrorTypePersistence ErrorType = "PERSISTENCE_ERROR"
	ErrorTypeInternal    ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnbalancedEntries ErrorCode = "UNBALANCED_ENTRIES"
	ErrCodeEmptyEntries      ErrorCode = "EMPTY_ENTRIES"
	ErrCodeInvalidEntryLine  ErrorCode = "INVALID_ENTRY_LINE"
	ErrCodeVoidReasonMissing ErrorCode = "VOID_REASON_REQUIRED"
	ErrCodeInvalidAccountRef ErrorCode = "INVALID_ACCOUNT_REFERENCE"
	ErrCodeInvalidDate       ErrorCode = "INVALID_DATE"

	ErrCodeCapabilityMissing ErrorCode = "CAPABILITY_MISSING"

	ErrCodeInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeStatusChanged     ErrorCode = "STATUS_CHANGED_CONCURRENTLY"
	ErrCodeNotDraft          ErrorCode = "TRANSACTION_NOT_DRAFT"
	ErrCodeBudgetInUse       ErrorCode = "BUDGET_IN_USE"
	ErrCodeAccountInUse      ErrorCode = "ACCOUNT_IN_USE"
	ErrCodeDuplicateCode     ErrorCode = "DUPLICATE_ACCOUNT_CODE"

	ErrCodeHierarchyCycle ErrorCode = "ACCOUNT_HIERARCHY_CYCLE"

	ErrCodeTransactionNotFound ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeAccountNotFound     ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeBudgetNotFound      ErrorCode = "BUDGET_NOT_FOUND"
	ErrCodeFundNotFound        ErrorCode = "FUND_NOT_FOUND"

	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"
	ErrCodeConstraintFailed ErrorCode = "CONSTRAINT_VIOLATION"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewPermissionDeniedError reports a failed capability check. Never retried.
func NewPermissionDeniedError(capability string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       ErrCodeCapabilityMissing,
		Message:    fmt.Sprintf("permission denied: capability %q required", capability),
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewStructuralError reports a malformed account hierarchy detected during
// traversal, such as a parent chain that loops back on itself.
func NewStructuralError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeStructural,
		Code:       ErrCodeHierarchyCycle,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewTransientError marks a backend failure as retryable. Only errors of this
// type are eligible for backoff inside the retry executor.
func NewTransientError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransient,
		Code:       ErrCodeStoreUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

func NewPersistenceError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypePersistence,
		Code:       ErrCodeConstraintFailed,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewRetriesExhaustedError wraps the final transient failure once the retry
// budget is spent, reporting how many attempts were made in total.
func NewRetriesExhaustedError(attempts int, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransient,
		Code:       ErrCodeRetriesExhausted,
		Message:    fmt.Sprintf("operation failed after %d attempts", attempts),
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

var (
	ErrTransactionNotFound = NewNotFoundError("transaction not found", ErrCodeTransactionNotFound)
	ErrAccountNotFound     = NewNotFoundError("account not found", ErrCodeAccountNotFound)
	ErrBudgetNotFound      = NewNotFoundError("budget not found", ErrCodeBudgetNotFound)
	ErrFundNotFound        = NewNotFoundError("fund not found", ErrCodeFundNotFound)

	ErrCannotModifyPosted = NewConflictError("transaction can only be modified while in draft", ErrCodeNotDraft)
	ErrBudgetInUse        = NewConflictError("budget has linked transactions and cannot be deleted", ErrCodeBudgetInUse)
	ErrAccountInUse       = NewConflictError("account has ledger entries and can only be deactivated", ErrCodeAccountInUse)
	ErrStatusChanged      = NewConflictError("transaction status changed concurrently, re-fetch and retry", ErrCodeStatusChanged)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsTransient reports whether err is retryable under the backoff policy.
func IsTransient(err error) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type == ErrorTypeTransient
	}
	return false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
