package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest          ErrorCode = "BAD_REQUEST"
	ErrCodeConflict            ErrorCode = "CONFLICT"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError       ErrorCode = "DATABASE_ERROR"
	ErrCodeSeminarFull         ErrorCode = "SEMINAR_FULL"
	ErrCodeNotPayable          ErrorCode = "NOT_PAYABLE"
	ErrCodeAlreadySubmitted    ErrorCode = "ALREADY_SUBMITTED"
	ErrCodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeConsistency         ErrorCode = "CONSISTENCY_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Consistency заворачивает ошибку хранилища внутри денежной транзакции.
// Уже типизированные ошибки (NotFound, Forbidden и т.п.) пропускаются как есть.
func Consistency(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(err, ErrCodeConsistency, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidAmount:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeSeminarFull, ErrCodeNotPayable, ErrCodeAlreadySubmitted:
		return http.StatusConflict
	case ErrCodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

func IsSeminarFull(err error) bool {
	return hasCode(err, ErrCodeSeminarFull)
}

func IsNotPayable(err error) bool {
	return hasCode(err, ErrCodeNotPayable)
}

func IsAlreadySubmitted(err error) bool {
	return hasCode(err, ErrCodeAlreadySubmitted)
}

func IsInvalidAmount(err error) bool {
	return hasCode(err, ErrCodeInvalidAmount)
}

func IsInsufficientBalance(err error) bool {
	return hasCode(err, ErrCodeInsufficientBalance)
}

func IsConsistency(err error) bool {
	return hasCode(err, ErrCodeConsistency)
}

var (
	ErrSeminarNotFound    = New(ErrCodeNotFound, "семинар не найден")
	ErrEnrollmentNotFound = New(ErrCodeNotFound, "запись на семинар не найдена")
	ErrWalletNotFound     = New(ErrCodeNotFound, "кошелёк не найден")
	ErrWithdrawalNotFound = New(ErrCodeNotFound, "заявка на вывод не найдена")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrSeminarFull        = New(ErrCodeSeminarFull, "на семинаре нет свободных мест")
	ErrNotPayable         = New(ErrCodeNotPayable, "оплата пока недоступна")
	ErrAlreadySubmitted   = New(ErrCodeAlreadySubmitted, "оплата уже отправлена на проверку")
	ErrInvalidAmount      = New(ErrCodeInvalidAmount, "сумма должна быть положительной")
	ErrInsufficientFunds  = New(ErrCodeInsufficientBalance, "недостаточно средств на балансе")
)
