package seminar_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okalab/okalab-backend/internal/cache"
	"github.com/okalab/okalab-backend/internal/domain/entity"
	"github.com/okalab/okalab-backend/internal/infrastructure/memory"
	"github.com/okalab/okalab-backend/internal/models"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/usecase/seminar"
)

var (
	professor = authz.Actor{UserID: uuid.New(), Email: "Prof@Okalab.io", Role: authz.RoleProfessor}
	student   = authz.Actor{UserID: uuid.New(), Email: "student@okalab.io", Role: authz.RoleStudent}
	admin     = authz.Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: authz.RoleAdmin}

	defaults = seminar.Defaults{
		PlatformFeePercent:    decimal.NewFromInt(15),
		ProfessorBonusPercent: decimal.NewFromInt(30),
	}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createInput() seminar.CreateSeminarInput {
	target := 10
	return seminar.CreateSeminarInput{
		Actor:          professor,
		Title:          "Distributed systems in Go",
		TargetIncome:   dec("500"),
		TargetStudents: &target,
		StartDate:      time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestCreateSeminar_AppliesDefaults(t *testing.T) {
	store := memory.NewStore()
	uc := seminar.NewCreateSeminarUseCase(store, defaults)

	input := createInput()
	input.TargetStudents = nil
	s, err := uc.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, entity.DefaultTargetStudents, s.TargetStudents)
	assert.Equal(t, entity.DefaultPaymentDueDays, s.PaymentDueDays)
	assert.True(t, s.PlatformFeePercent.Equal(decimal.NewFromInt(15)))
	assert.True(t, s.ProfessorBonusPercent.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "prof@okalab.io", s.ProfessorEmail)
	assert.Equal(t, professor.UserID, s.ProfessorID)

	stored, err := store.Seminars().FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Title, stored.Title)
}

func TestCreateSeminar_UsesPlatformSettings(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Settings().Save(context.Background(), &models.PlatformSettings{
		PlatformFeePercent:      dec("10"),
		SurplusProfessorPercent: dec("50"),
	}))
	uc := seminar.NewCreateSeminarUseCase(store, defaults)

	s, err := uc.Execute(context.Background(), createInput())
	require.NoError(t, err)
	assert.True(t, s.PlatformFeePercent.Equal(dec("10")))
	assert.True(t, s.ProfessorBonusPercent.Equal(dec("50")))

	fee := dec("20")
	input := createInput()
	input.PlatformFeePercent = &fee
	s, err = uc.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, s.PlatformFeePercent.Equal(fee))
}

func TestCreateSeminar_Rejects(t *testing.T) {
	uc := seminar.NewCreateSeminarUseCase(memory.NewStore(), defaults)
	ctx := context.Background()

	input := createInput()
	input.Actor = student
	_, err := uc.Execute(ctx, input)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	input = createInput()
	input.TargetIncome = dec("-1")
	_, err = uc.Execute(ctx, input)
	assert.True(t, apperror.IsValidation(err))

	negative := -1
	input = createInput()
	input.TargetStudents = &negative
	_, err = uc.Execute(ctx, input)
	assert.True(t, apperror.IsValidation(err))

	pct := dec("101")
	input = createInput()
	input.ProfessorBonusPercent = &pct
	_, err = uc.Execute(ctx, input)
	assert.True(t, apperror.IsValidation(err))

	input = createInput()
	input.Title = "ab"
	_, err = uc.Execute(ctx, input)
	assert.True(t, apperror.IsValidation(err))
}

func seedEnrollments(t *testing.T, store *memory.Store, seminarID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e := entity.NewEnrollment(seminarID, uuid.New(), uuid.NewString()+"@okalab.io", nil)
		require.NoError(t, store.Enrollments().Create(context.Background(), e))
	}
}

func TestQuote_PriceFallsAsStudentsEnroll(t *testing.T) {
	store := memory.NewStore()
	s, err := seminar.NewCreateSeminarUseCase(store, defaults).Execute(context.Background(), createInput())
	require.NoError(t, err)

	counts := cache.NewMemoryCountCache(time.Minute)
	defer counts.Close()
	uc := seminar.NewQuoteUseCase(store, counts)
	ctx := context.Background()

	cases := []struct {
		total int
		price string
	}{
		{1, "500.00"},
		{5, "100.00"},
		{10, "50.00"},
		{20, "50.00"},
	}
	enrolled := 0
	for _, tc := range cases {
		seedEnrollments(t, store, s.ID, tc.total-enrolled)
		enrolled = tc.total
		counts.Invalidate(ctx, s.ID)

		q, err := uc.Execute(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.total, q.EnrollmentCount)
		assert.Equal(t, tc.price, q.CurrentPrice.StringFixed(2), "count=%d", tc.total)
	}

	q, err := uc.Execute(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, q.TargetReached)
	assert.Equal(t, "50.00", q.MinPrice.StringFixed(2))
	assert.Equal(t, "75.00", q.PlatformFee.StringFixed(2))
	assert.Equal(t, "425.00", q.ProfessorNet.StringFixed(2))
}

func TestQuote_ServesCachedCount(t *testing.T) {
	store := memory.NewStore()
	s, err := seminar.NewCreateSeminarUseCase(store, defaults).Execute(context.Background(), createInput())
	require.NoError(t, err)
	counts := cache.NewMemoryCountCache(time.Minute)
	defer counts.Close()
	uc := seminar.NewQuoteUseCase(store, counts)
	ctx := context.Background()

	seedEnrollments(t, store, s.ID, 2)
	q, err := uc.Execute(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "250.00", q.CurrentPrice.StringFixed(2))
	assert.Equal(t, "166.67", q.NextPrice.StringFixed(2))

	seedEnrollments(t, store, s.ID, 3)
	q, err = uc.Execute(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, q.EnrollmentCount)

	_, err = uc.Execute(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestCounts_Batch(t *testing.T) {
	store := memory.NewStore()
	create := seminar.NewCreateSeminarUseCase(store, defaults)
	first, err := create.Execute(context.Background(), createInput())
	require.NoError(t, err)
	second, err := create.Execute(context.Background(), createInput())
	require.NoError(t, err)
	seedEnrollments(t, store, first.ID, 3)

	counts := cache.NewMemoryCountCache(time.Minute)
	defer counts.Close()
	counts.Set(context.Background(), second.ID, 7)

	unknown := uuid.New()
	result, err := seminar.NewCountsUseCase(store, counts).Execute(context.Background(), []uuid.UUID{first.ID, second.ID, unknown})
	require.NoError(t, err)
	assert.Equal(t, 3, result[first.ID])
	assert.Equal(t, 7, result[second.ID])
	assert.Equal(t, 0, result[unknown])
}

func TestSettings_GetAndUpdate(t *testing.T) {
	store := memory.NewStore()
	uc := seminar.NewSettingsUseCase(store, defaults)
	ctx := context.Background()

	settings, err := uc.Get(ctx, admin)
	require.NoError(t, err)
	assert.True(t, settings.PlatformFeePercent.Equal(decimal.NewFromInt(15)))

	_, err = uc.Get(ctx, professor)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := uc.Update(ctx, admin, seminar.UpdateSettingsInput{
		PlatformFeePercent:      dec("12.5"),
		SurplusProfessorPercent: dec("40"),
	})
	require.NoError(t, err)
	assert.True(t, updated.PlatformFeePercent.Equal(dec("12.5")))

	settings, err = uc.Get(ctx, admin)
	require.NoError(t, err)
	assert.True(t, settings.SurplusProfessorPercent.Equal(dec("40")))

	_, err = uc.Update(ctx, admin, seminar.UpdateSettingsInput{PlatformFeePercent: dec("120")})
	assert.True(t, apperror.IsValidation(err))
}
