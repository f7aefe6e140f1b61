package common

import (
	"errors"

	"github.com/lib/pq"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

// Коды ошибок PostgreSQL, которые переводятся в доменные
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// DBError переводит ошибку драйвера в AppError.
// Нарушение CHECK означает, что команда пыталась сломать инвариант баланса.
func DBError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return apperror.Wrap(err, apperror.ErrCodeConflict, message)
		case pgForeignKeyViolation:
			return apperror.Wrap(err, apperror.ErrCodeNotFound, message)
		case pgCheckViolation:
			return apperror.Wrap(err, apperror.ErrCodeConsistency, message)
		}
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}
