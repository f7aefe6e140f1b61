// Package pricing содержит чистые правила ценообразования семинаров:
// расчёт цены от числа записей, окно оплаты и распределение излишка.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/domain/valueobject"
)

// QuoteInput входные данные котировки.
type QuoteInput struct {
	TargetIncome    decimal.Decimal
	TargetStudents  int
	EnrollmentCount int
	// FallbackPrice используется, когда целевой доход не задан.
	FallbackPrice decimal.Decimal
}

// InputFor собирает QuoteInput по семинару и числу активных записей.
func InputFor(s *entity.Seminar, count int) QuoteInput {
	return QuoteInput{
		TargetIncome:    s.TargetIncome,
		TargetStudents:  s.TargetStudents,
		EnrollmentCount: count,
		FallbackPrice:   s.FallbackPrice(),
	}
}

// QuoteCurrentPrice цена за место при текущем числе записей.
// Знаменатель min(target_students, max(1, count)): при нуле записей цена равна
// целевому доходу, после достижения цели цена замирает на минимуме.
func QuoteCurrentPrice(in QuoteInput) decimal.Decimal {
	if !in.TargetIncome.IsPositive() {
		if in.FallbackPrice.IsNegative() {
			return decimal.Zero
		}
		return valueobject.RoundMoney(in.FallbackPrice)
	}

	denom := in.EnrollmentCount
	if denom < 1 {
		denom = 1
	}
	if target := targetStudents(in); denom > target {
		denom = target
	}

	return valueobject.RoundMoney(in.TargetIncome.Div(decimal.NewFromInt(int64(denom))))
}

// QuoteNextPrice цена, если запишется ещё один студент.
func QuoteNextPrice(in QuoteInput) decimal.Decimal {
	next := in
	next.EnrollmentCount = in.EnrollmentCount + 1
	if next.EnrollmentCount < 1 {
		next.EnrollmentCount = 1
	}
	return QuoteCurrentPrice(next)
}

// MinPrice нижняя граница цены (target_income / target_students).
func MinPrice(in QuoteInput) decimal.Decimal {
	floor := in
	floor.EnrollmentCount = targetStudents(in)
	return QuoteCurrentPrice(floor)
}

// TargetReached true, если набрано целевое число студентов.
func TargetReached(in QuoteInput) bool {
	return in.EnrollmentCount >= targetStudents(in)
}

func targetStudents(in QuoteInput) int {
	if in.TargetStudents < 1 {
		return 1
	}
	return in.TargetStudents
}
