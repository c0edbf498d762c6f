package domain

import (
	"errors"
	"net/http"
)

// Error codes returned to clients.
const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeBadRequest              = "BAD_REQUEST"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeNoToken                 = "NO_TOKEN"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeAuthFailed              = "AUTH_FAILED"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken     = "INVALID_REFRESH_TOKEN"
	CodeRefreshTokenExpired     = "REFRESH_TOKEN_EXPIRED"
	CodeInsufficientRole        = "INSUFFICIENT_ROLE"
	CodeForbidden               = "FORBIDDEN"
	CodeAccountDeactivated      = "ACCOUNT_DEACTIVATED"
	CodeEmailNotVerified        = "EMAIL_NOT_VERIFIED"
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeInternal                = "INTERNAL_ERROR"
)

// AppError is an error with a machine readable code and an HTTP status.
type AppError struct {
	Code    string
	Message string
	Status  int
	Details any
}

func (e *AppError) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches on code so callers can compare against the predefined errors below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of e with a different message.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

func newAppError(status int, code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Status: status}
}

func NewValidationError(msg string, details any) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: http.StatusBadRequest, Details: details}
}

func NewBadRequestError(msg string) *AppError {
	return newAppError(http.StatusBadRequest, CodeBadRequest, msg)
}

func NewUnauthorizedError(code, msg string) *AppError {
	return newAppError(http.StatusUnauthorized, code, msg)
}

func NewForbiddenError(code, msg string) *AppError {
	return newAppError(http.StatusForbidden, code, msg)
}

func NewNotFoundError(msg string) *AppError {
	return newAppError(http.StatusNotFound, CodeNotFound, msg)
}

func NewConflictError(code, msg string) *AppError {
	return newAppError(http.StatusConflict, code, msg)
}

// Authentication errors
var (
	ErrNoToken             = NewUnauthorizedError(CodeNoToken, "Authentication token is required")
	ErrInvalidToken        = NewUnauthorizedError(CodeInvalidToken, "Invalid token")
	ErrTokenExpired        = NewUnauthorizedError(CodeTokenExpired, "Token has expired")
	ErrAuthFailed          = NewUnauthorizedError(CodeAuthFailed, "Authentication failed")
	ErrInvalidCredentials  = NewUnauthorizedError(CodeInvalidCredentials, "Invalid email or password")
	ErrInvalidRefreshToken = NewUnauthorizedError(CodeInvalidRefreshToken, "Invalid refresh token")
	ErrRefreshTokenExpired = NewUnauthorizedError(CodeRefreshTokenExpired, "Refresh token has expired")
	ErrInsufficientRole    = NewUnauthorizedError(CodeInsufficientRole, "Insufficient permissions")
)

// Account errors
var (
	ErrAccountDeactivated = NewForbiddenError(CodeAccountDeactivated, "Account is deactivated")
	ErrEmailNotVerified   = NewForbiddenError(CodeEmailNotVerified, "Email is not verified")
	ErrEmailExists        = NewConflictError(CodeEmailExists, "User with this email already exists")
	ErrUserNotFound       = NewNotFoundError("User not found")
)

// Order errors
var (
	ErrOrderNotFound           = NewNotFoundError("Order not found")
	ErrInvalidStatusTransition = NewConflictError(CodeInvalidStatusTransition, "Order status cannot move backwards")
)

var ErrRateLimitExceeded = newAppError(http.StatusTooManyRequests, CodeRateLimitExceeded, "Too many requests")

// AsAppError unwraps err into an *AppError when one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
