package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/models"
)

// Методы *ForUpdate блокируют строку до конца транзакции. Вне WithinTx
// блокировка не держится, поэтому вызывать их имеет смысл только внутри.

type SeminarRepository interface {
	Create(ctx context.Context, seminar *entity.Seminar) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Seminar, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Seminar, error)
	// ListAwaitingPaymentWindow семинары, открытые для записи, по которым ещё не было напоминания.
	ListAwaitingPaymentWindow(ctx context.Context) ([]*entity.Seminar, error)
	MarkPaymentWindowNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	Update(ctx context.Context, enrollment *entity.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error)
	FindActiveByStudent(ctx context.Context, seminarID, studentID uuid.UUID) (*entity.Enrollment, error)
	// MarkPendingPayment переводит запись в pending_payment, только если она ещё
	// в unpaid или rejected. false означает, что запись уже изменили.
	MarkPendingPayment(ctx context.Context, enrollment *entity.Enrollment) (bool, error)
	CountActive(ctx context.Context, seminarID uuid.UUID) (int, error)
	CountActiveBySeminars(ctx context.Context, seminarIDs []uuid.UUID) (map[uuid.UUID]int, error)
	SumPaid(ctx context.Context, seminarID uuid.UUID) (decimal.Decimal, error)
	ListPaidReferrers(ctx context.Context, seminarID uuid.UUID) ([]string, error)
	ListAwaitingPayment(ctx context.Context, seminarID uuid.UUID) ([]*entity.Enrollment, error)
	// List записи по фильтру, новые сверху.
	List(ctx context.Context, filter EnrollmentFilter) ([]*entity.Enrollment, error)
}

// EnrollmentFilter пустые поля не ограничивают выборку. PaymentStatus
// pending_payment включает и устаревший pending.
type EnrollmentFilter struct {
	SeminarID     uuid.UUID
	StudentID     uuid.UUID
	PaymentStatus string
	Limit         int
	Offset        int
}

type WalletRepository interface {
	// Create ничего не делает, если у владельца уже есть кошелёк этого типа.
	// После него кошелёк читается заново через FindByOwnerForUpdate.
	Create(ctx context.Context, wallet *models.Wallet) error
	Update(ctx context.Context, wallet *models.Wallet) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	FindByOwner(ctx context.Context, email, userType string) (*models.Wallet, error)
	FindByOwnerForUpdate(ctx context.Context, email, userType string) (*models.Wallet, error)
	ListByEmail(ctx context.Context, email string) ([]models.Wallet, error)
	List(ctx context.Context, limit, offset int) ([]models.Wallet, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) error
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.Transaction, error)
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
}

type TransactionFilter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *models.WithdrawalRequest) error
	Update(ctx context.Context, w *models.WithdrawalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.WithdrawalRequest, error)
	List(ctx context.Context, filter WithdrawalFilter) ([]models.WithdrawalRequest, error)
}

type WithdrawalFilter struct {
	Status string
	Limit  int
	Offset int
}

type SettlementRepository interface {
	// GetForUpdate возвращает пустое состояние, если расчётов ещё не было.
	GetForUpdate(ctx context.Context, seminarID uuid.UUID) (*models.SeminarSettlement, error)
	Save(ctx context.Context, settlement *models.SeminarSettlement) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Save(ctx context.Context, settings *models.PlatformSettings) error
}

// Repositories набор репозиториев, привязанных к одному соединению или транзакции.
type Repositories interface {
	Seminars() SeminarRepository
	Enrollments() EnrollmentRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Withdrawals() WithdrawalRepository
	Settlements() SettlementRepository
	Settings() SettingsRepository
}

// Store хранилище с атомарным выполнением команд.
type Store interface {
	Repositories
	// WithinTx выполняет fn в одной транзакции. Ошибка из fn откатывает все изменения.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}

// LockEnrollment блокирует семинар записи, затем саму запись. Все команды над
// записями берут блокировки в этом порядке.
func LockEnrollment(ctx context.Context, repos Repositories, enrollmentID uuid.UUID) (*entity.Seminar, *entity.Enrollment, error) {
	e, err := repos.Enrollments().FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, nil, err
	}
	seminar, err := repos.Seminars().FindByIDForUpdate(ctx, e.SeminarID)
	if err != nil {
		return nil, nil, err
	}
	e, err = repos.Enrollments().FindByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		return nil, nil, err
	}
	return seminar, e, nil
}
