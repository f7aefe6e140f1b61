package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

func TestDBError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"unique", &pq.Error{Code: pgUniqueViolation}, apperror.IsConflict},
		{"foreign key", &pq.Error{Code: pgForeignKeyViolation}, apperror.IsNotFound},
		{"check constraint", fmt.Errorf("update: %w", &pq.Error{Code: pgCheckViolation}), apperror.IsConsistency},
		{"app error passes through", apperror.ErrInsufficientFunds, apperror.IsInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(DBError(tt.err, "msg")))
		})
	}
}

func TestDBError_Generic(t *testing.T) {
	err := DBError(errors.New("connection reset"), "не удалось прочитать")

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeDatabaseError, appErr.Code)
	assert.Nil(t, DBError(nil, "msg"))
}
