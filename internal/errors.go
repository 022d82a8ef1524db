package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCategory  ErrorCode = "INVALID_CATEGORY"

	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
	ErrCodeLoginFailed        ErrorCode = "LOGIN_FAILED"
	ErrCodeProfileFetchFailed ErrorCode = "PROFILE_FETCH_FAILED"

	ErrCodeDuplicateAccount   ErrorCode = "DUPLICATE_ACCOUNT"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeRegistrationFailed ErrorCode = "REGISTRATION_FAILED"

	ErrCodeNetworkFailure     ErrorCode = "NETWORK_FAILURE"
	ErrCodeUnexpectedResponse ErrorCode = "UNEXPECTED_RESPONSE"
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
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so that sentinel errors compare equal to freshly built ones.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
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

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewExternalError(message string, code ErrorCode, status int) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    "INTERNAL_ERROR",
		Message: message,
		Cause:   cause,
	}
}

// NewRegistrationFailed carries the unexpected status returned by the register endpoint.
func NewRegistrationFailed(status int) *AppError {
	clone := *ErrRegistrationFailed
	clone.Message = fmt.Sprintf("%d: %s", status, ErrRegistrationFailed.Message)
	clone.StatusCode = status
	return &clone
}

// NewNetworkFailure wraps a transport level error.
func NewNetworkFailure(cause error) *AppError {
	return ErrNetworkFailure.WithCause(cause)
}

// NewUnexpectedResponse reports a non-2xx status on a data call.
func NewUnexpectedResponse(method, path string, status int) *AppError {
	return NewExternalError(fmt.Sprintf("%s %s returned status %d", method, path, status), ErrCodeUnexpectedResponse, status)
}

var (
	ErrUnauthenticated    = NewUnauthorizedError("Not authenticated", ErrCodeUnauthenticated)
	ErrSessionExpired     = NewUnauthorizedError("Session expired. Please login again.", ErrCodeSessionExpired)
	ErrLoginFailed        = NewUnauthorizedError("Login failed", ErrCodeLoginFailed)
	ErrProfileFetchFailed = NewExternalError("Failed to get user info", ErrCodeProfileFetchFailed, 0)

	ErrDuplicateAccount   = NewConflictError("400: Username or email already exists", ErrCodeDuplicateAccount)
	ErrInvalidInput       = NewValidationError("422: Invalid input data", ErrCodeInvalidInput)
	ErrRegistrationFailed = NewExternalError("Registration failed", ErrCodeRegistrationFailed, 0)

	ErrNetworkFailure     = NewExternalError("Network request failed", ErrCodeNetworkFailure, 0)
	ErrUnexpectedResponse = NewExternalError("Unexpected response", ErrCodeUnexpectedResponse, 0)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusBadGateway
	}
	return status, Response{Error: e}
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
