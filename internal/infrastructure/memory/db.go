// Package memory хранит данные в памяти процесса. Используется в тестах и
// при STORAGE_DRIVER=memory для локальной разработки.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	"github.com/okalab/okalab-backend/internal/models"
)

type tables struct {
	seminars     map[uuid.UUID]entity.Seminar
	enrollments  map[uuid.UUID]entity.Enrollment
	wallets      map[uuid.UUID]models.Wallet
	transactions map[uuid.UUID]models.Transaction
	withdrawals  map[uuid.UUID]models.WithdrawalRequest
	settlements  map[uuid.UUID]models.SeminarSettlement
	settings     *models.PlatformSettings
}

func newTables() *tables {
	return &tables{
		seminars:     make(map[uuid.UUID]entity.Seminar),
		enrollments:  make(map[uuid.UUID]entity.Enrollment),
		wallets:      make(map[uuid.UUID]models.Wallet),
		transactions: make(map[uuid.UUID]models.Transaction),
		withdrawals:  make(map[uuid.UUID]models.WithdrawalRequest),
		settlements:  make(map[uuid.UUID]models.SeminarSettlement),
	}
}

// clone копирует таблицы для отката транзакции.
func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.seminars {
		c.seminars[k] = v
	}
	for k, v := range t.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range t.wallets {
		c.wallets[k] = v
	}
	for k, v := range t.transactions {
		c.transactions[k] = v
	}
	for k, v := range t.withdrawals {
		c.withdrawals[k] = v
	}
	for k, v := range t.settlements {
		c.settlements[k] = v
	}
	if t.settings != nil {
		s := *t.settings
		c.settings = &s
	}
	return c
}

// Store реализует repository.Store. Транзакции сериализуются одним мьютексом,
// при ошибке таблицы восстанавливаются из снимка.
type Store struct {
	mu   sync.Mutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &repos{store: s, inTx: true})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Seminars() repository.SeminarRepository {
	return &seminarRepo{repos{store: s}}
}

func (s *Store) Enrollments() repository.EnrollmentRepository {
	return &enrollmentRepo{repos{store: s}}
}

func (s *Store) Wallets() repository.WalletRepository {
	return &walletRepo{repos{store: s}}
}

func (s *Store) Transactions() repository.TransactionRepository {
	return &transactionRepo{repos{store: s}}
}

func (s *Store) Withdrawals() repository.WithdrawalRepository {
	return &withdrawalRepo{repos{store: s}}
}

func (s *Store) Settlements() repository.SettlementRepository {
	return &settlementRepo{repos{store: s}}
}

func (s *Store) Settings() repository.SettingsRepository {
	return &settingsRepo{repos{store: s}}
}

// repos привязка репозиториев к хранилищу. Внутри транзакции мьютекс уже захвачен.
type repos struct {
	store *Store
	inTx  bool
}

func (r *repos) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *repos) t() *tables {
	return r.store.data
}

func (r *repos) Seminars() repository.SeminarRepository {
	return &seminarRepo{*r}
}

func (r *repos) Enrollments() repository.EnrollmentRepository {
	return &enrollmentRepo{*r}
}

func (r *repos) Wallets() repository.WalletRepository {
	return &walletRepo{*r}
}

func (r *repos) Transactions() repository.TransactionRepository {
	return &transactionRepo{*r}
}

func (r *repos) Withdrawals() repository.WithdrawalRepository {
	return &withdrawalRepo{*r}
}

func (r *repos) Settlements() repository.SettlementRepository {
	return &settlementRepo{*r}
}

func (r *repos) Settings() repository.SettingsRepository {
	return &settingsRepo{*r}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
