package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
)

// AppError описывает ошибку, которую можно показать клиенту
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func BadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: fiber.StatusBadRequest}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: fiber.StatusUnauthorized}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: fiber.StatusForbidden}
}

func NotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: fiber.StatusNotFound}
}

func Conflict(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: fiber.StatusConflict}
}

// Internal скрывает причину от клиента, но сохраняет её для логов
func Internal(message string, err error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: fiber.StatusInternalServerError, Err: err}
}

// Is проверяет код ошибки
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
