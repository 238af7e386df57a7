package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries an HTTP status, a stable reason code and a user-facing
// message across service boundaries. The wrapped error stays in logs only.
type AppError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`

	err error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.err
}

func NewAppError(statusCode int, code, message string, err error) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		err:        err,
	}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidationFailed, message, err)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeTokenInvalid, message, err)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, err)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeUserNotFound, message, err)
}

// NewInvalidCredentialsError is returned for unknown users, wrong passwords and
// blocked IPs alike, so a caller cannot probe which accounts exist.
func NewInvalidCredentialsError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, message, nil)
}

func NewAccountDisabledError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeAccountDisabled, message, nil)
}

func NewRefreshTokenError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeRefreshTokenInvalid, message, nil)
}

func NewRateLimitError(message string, data interface{}) *AppError {
	return &AppError{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimitExceeded,
		Message:    message,
		Data:       data,
	}
}

func NewConflictError(code, message string) *AppError {
	return NewAppError(http.StatusConflict, code, message, nil)
}
