package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GetByID - универсальная функция для получения сущности по ID
func GetByID[T any](ctx context.Context, q sqlx.QueryerContext, table string, id interface{}, notFoundErr error) (*T, error) {
	return getOne[T](ctx, q, fmt.Sprintf("SELECT * FROM %s WHERE id = $1", table), table, notFoundErr, id)
}

// GetByIDForUpdate то же, что GetByID, но блокирует строку до конца транзакции
func GetByIDForUpdate[T any](ctx context.Context, q sqlx.QueryerContext, table string, id interface{}, notFoundErr error) (*T, error) {
	return getOne[T](ctx, q, fmt.Sprintf("SELECT * FROM %s WHERE id = $1 FOR UPDATE", table), table, notFoundErr, id)
}

// GetOne выполняет произвольный запрос, возвращающий одну строку
func GetOne[T any](ctx context.Context, q sqlx.QueryerContext, query string, notFoundErr error, args ...interface{}) (*T, error) {
	return getOne[T](ctx, q, query, "query", notFoundErr, args...)
}

func getOne[T any](ctx context.Context, q sqlx.QueryerContext, query, source string, notFoundErr error, args ...interface{}) (*T, error) {
	var entity T
	if err := sqlx.GetContext(ctx, q, &entity, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, DBError(err, fmt.Sprintf("не удалось прочитать %s", source))
	}
	return &entity, nil
}

// SelectAll возвращает все строки запроса, пустой срез вместо nil
func SelectAll[T any](ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) ([]T, error) {
	items := make([]T, 0)
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return nil, DBError(err, "не удалось выполнить выборку")
	}
	return items, nil
}

// WithTransaction выполняет функцию внутри транзакции с правильной обработкой ошибок
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
