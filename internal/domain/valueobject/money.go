package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

// MoneyScale количество знаков после запятой у денежных сумм.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney округляет сумму до копеек (half-up).
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// TruncateMoney отбрасывает доли копеек.
func TruncateMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Truncate(MoneyScale)
}

// PercentOf возвращает pct процентов от amount без округления.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// NewPositiveAmount проверяет сумму денежной операции.
func NewPositiveAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount
	}
	if !amount.Equal(RoundMoney(amount)) {
		return decimal.Zero, apperror.New(apperror.ErrCodeInvalidAmount, "сумма не может содержать доли копеек")
	}
	return amount, nil
}

// NewPercent проверяет процент в диапазоне [0, 100].
func NewPercent(pct decimal.Decimal) (decimal.Decimal, error) {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Zero, apperror.New(apperror.ErrCodeValidation, "процент должен быть от 0 до 100")
	}
	return pct, nil
}
