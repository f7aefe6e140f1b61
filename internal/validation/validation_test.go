package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

type moneyInput struct {
	Title    string           `validate:"required,min=3"`
	Amount   decimal.Decimal  `validate:"money"`
	Percent  *decimal.Decimal `validate:"omitempty,percent"`
	UserType string           `validate:"oneof=professor student"`
}

func TestStruct(t *testing.T) {
	pct := decimal.NewFromInt(15)
	ok := moneyInput{Title: "Go concurrency", Amount: decimal.RequireFromString("10.50"), Percent: &pct, UserType: "student"}
	require.NoError(t, Struct(ok))

	bad := ok
	bad.Amount = decimal.RequireFromString("10.505")
	err := Struct(bad)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "amount")

	badPct := decimal.NewFromInt(150)
	bad = ok
	bad.Percent = &badPct
	assert.True(t, apperror.IsValidation(Struct(bad)))

	bad = ok
	bad.UserType = "admin"
	assert.True(t, apperror.IsValidation(Struct(bad)))

	bad = ok
	bad.Title = ""
	err = Struct(bad)
	assert.Contains(t, err.Error(), "title обязательно")
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("Student@Okalab.io"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("a@b"))
	assert.Equal(t, "student@okalab.io", NormalizeEmail("  Student@Okalab.io "))
}

func TestValidateSeminarTitle(t *testing.T) {
	assert.NoError(t, ValidateSeminarTitle("Distributed systems"))
	assert.Error(t, ValidateSeminarTitle("  "))
	assert.Error(t, ValidateSeminarTitle("ab"))
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "target_income", toSnake("TargetIncome"))
	assert.Equal(t, "title", toSnake("Title"))
}
