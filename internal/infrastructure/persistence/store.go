// Package persistence реализует репозитории поверх PostgreSQL.
package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/repository/common"
)

type Store struct {
	db *sqlx.DB
	repos
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, repos: repos{q: db}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return common.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(ctx, repos{q: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// repos привязывает репозитории к *sqlx.DB или *sqlx.Tx.
type repos struct {
	q sqlx.ExtContext
}

func (r repos) Seminars() repository.SeminarRepository {
	return &SeminarRepository{q: r.q}
}

func (r repos) Enrollments() repository.EnrollmentRepository {
	return &EnrollmentRepository{q: r.q}
}

func (r repos) Wallets() repository.WalletRepository {
	return &WalletRepository{q: r.q}
}

func (r repos) Transactions() repository.TransactionRepository {
	return &TransactionRepository{q: r.q}
}

func (r repos) Withdrawals() repository.WithdrawalRepository {
	return &WithdrawalRepository{q: r.q}
}

func (r repos) Settlements() repository.SettlementRepository {
	return &SettlementRepository{q: r.q}
}

func (r repos) Settings() repository.SettingsRepository {
	return &SettingsRepository{q: r.q}
}
