package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

func TestPaymentStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		allowed  bool
	}{
		{PaymentStatusUnpaid, PaymentStatusPendingPayment, true},
		{PaymentStatusUnpaid, PaymentStatusPaid, false},
		{PaymentStatusPendingPayment, PaymentStatusPaid, true},
		{PaymentStatusPendingPayment, PaymentStatusRejected, true},
		{PaymentStatusLegacyPending, PaymentStatusPaid, true},
		{PaymentStatusRejected, PaymentStatusPendingPayment, true},
		{PaymentStatusRejected, PaymentStatusPaid, false},
		{PaymentStatusPaid, PaymentStatusRejected, false},
		{PaymentStatusPaid, PaymentStatusPendingPayment, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPaymentStatus_CanSubmit(t *testing.T) {
	assert.True(t, PaymentStatusUnpaid.CanSubmit())
	assert.True(t, PaymentStatusRejected.CanSubmit())
	assert.False(t, PaymentStatusPendingPayment.CanSubmit())
	assert.False(t, PaymentStatusPaid.CanSubmit())
}

func TestSeminarStatus_AcceptsEnrollments(t *testing.T) {
	assert.True(t, SeminarStatusPublished.AcceptsEnrollments())
	assert.False(t, SeminarStatusCancelled.AcceptsEnrollments())
	assert.False(t, SeminarStatusDraft.AcceptsEnrollments())

	_, err := NewSeminarStatus("archived")
	assert.True(t, apperror.IsValidation(err))
}

func TestNewPositiveAmount(t *testing.T) {
	_, err := NewPositiveAmount(decimal.Zero)
	assert.True(t, apperror.IsInvalidAmount(err))

	_, err = NewPositiveAmount(decimal.NewFromInt(-5))
	assert.True(t, apperror.IsInvalidAmount(err))

	_, err = NewPositiveAmount(decimal.RequireFromString("10.005"))
	assert.True(t, apperror.IsInvalidAmount(err))

	amount, err := NewPositiveAmount(decimal.RequireFromString("10.50"))
	assert.NoError(t, err)
	assert.Equal(t, "10.5", amount.String())
}

func TestRoundMoney_HalfUp(t *testing.T) {
	assert.Equal(t, "33.33", RoundMoney(decimal.NewFromInt(100).Div(decimal.NewFromInt(3))).StringFixed(2))
	assert.Equal(t, "0.13", RoundMoney(decimal.RequireFromString("0.125")).StringFixed(2))
	assert.Equal(t, "37.50", RoundMoney(PercentOf(decimal.NewFromInt(125), decimal.NewFromInt(30))).StringFixed(2))
}
