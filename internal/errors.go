package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeMissingFields    ErrorCode = "MISSING_REQUIRED_FIELDS"
	ErrCodeUnknownModule    ErrorCode = "UNKNOWN_MODULE"
	ErrCodeUnknownRoleName  ErrorCode = "UNKNOWN_ROLE_NAME"

	ErrCodeRoleNotFound  ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleNameTaken ErrorCode = "ROLE_NAME_TAKEN"
	ErrCodeRoleProtected ErrorCode = "ROLE_PROTECTED"
	ErrCodeRoleInUse     ErrorCode = "ROLE_IN_USE"

	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken    ErrorCode = "EMAIL_TAKEN"
	ErrCodeUserProtected ErrorCode = "USER_PROTECTED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeStoreFailure ErrorCode = "STORE_FAILURE"
)

// AppError is the single error shape crossing service boundaries. Handlers map
// it onto the HTTP envelope; services attach the datastore error as Cause
// without exposing it to clients.
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
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// RoleInUseDetails carries the exact number of users still assigned to a role
// when its deletion is rejected.
type RoleInUseDetails struct {
	UserCount int64 `json:"userCount"`
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

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
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

// NewStoreError wraps a datastore failure. The wrapped cause stays available
// for logs; clients only see the message.
func NewStoreError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeStoreFailure,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrRoleNotFound        = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrRoleNameTaken       = NewConflictError("Role name already exists", ErrCodeRoleNameTaken)
	ErrRoleProtected       = NewForbiddenError("Cannot edit Admin role. The Admin role is protected and cannot be modified.", ErrCodeRoleProtected)
	ErrRoleProtectedDelete = NewForbiddenError("Cannot delete Admin role. The Admin role is protected and cannot be deleted.", ErrCodeRoleProtected)

	ErrUserNotFound  = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrEmailTaken    = NewConflictError("Email already exists", ErrCodeEmailTaken)
	ErrUserProtected = NewForbiddenError("Cannot delete the System Admin user. At least one system admin must exist.", ErrCodeUserProtected)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
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
