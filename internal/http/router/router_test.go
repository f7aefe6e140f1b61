package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okalab/okalab-backend/internal/cache"
	"github.com/okalab/okalab-backend/internal/config"
	"github.com/okalab/okalab-backend/internal/http/handlers"
	"github.com/okalab/okalab-backend/internal/http/middleware"
	"github.com/okalab/okalab-backend/internal/infrastructure/memory"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/service"
	"github.com/okalab/okalab-backend/internal/usecase/enrollment"
	"github.com/okalab/okalab-backend/internal/usecase/ledger"
	"github.com/okalab/okalab-backend/internal/usecase/notify"
	"github.com/okalab/okalab-backend/internal/usecase/payment"
	"github.com/okalab/okalab-backend/internal/usecase/seminar"
	"github.com/okalab/okalab-backend/internal/usecase/withdrawal"
	"github.com/okalab/okalab-backend/internal/ws"
)

type testServer struct {
	engine *gin.Engine
	tokens *service.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
		PlatformEmail:   "platform@okalab.io",
	}
	defaults := seminar.Defaults{
		PlatformFeePercent:    decimal.NewFromInt(15),
		ProfessorBonusPercent: decimal.NewFromInt(30),
	}

	store := memory.NewStore()
	counts := cache.NewMemoryCountCache(time.Minute)
	t.Cleanup(counts.Close)
	rec := &notify.Recorder{}
	tokens := service.NewTokenManager("router-test-secret", time.Hour)
	l := ledger.New()

	limiterStore, err := middleware.NewLimiterStore(nil)
	require.NoError(t, err)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	t.Cleanup(hubCancel)

	h := Handlers{
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{"storage": store}),
		WS:     handlers.NewWSHandler(ws.NewHub(hubCtx), tokens, cfg.AllowedOrigins),
		Seminar: handlers.NewSeminarHandler(
			seminar.NewCreateSeminarUseCase(store, defaults),
			seminar.NewQuoteUseCase(store, counts),
			seminar.NewCountsUseCase(store, counts),
		),
		Enrollment: handlers.NewEnrollmentHandler(
			enrollment.NewEnrollUseCase(store, counts, rec),
			enrollment.NewCancelEnrollmentUseCase(store, counts, rec),
			enrollment.NewPayabilityUseCase(store),
			enrollment.NewListEnrollmentsUseCase(store),
		),
		Payment: handlers.NewPaymentHandler(
			payment.NewSubmitPaymentUseCase(store, rec),
			payment.NewApprovePaymentUseCase(store, l, counts, rec, cfg.PlatformEmail),
			payment.NewRejectPaymentUseCase(store, rec),
		),
		Wallet:     handlers.NewWalletHandler(ledger.NewService(store, l, rec)),
		Withdrawal: handlers.NewWithdrawalHandler(withdrawal.NewProcessor(store, rec)),
		Settings:   handlers.NewSettingsHandler(seminar.NewSettingsUseCase(store, defaults)),
	}

	return &testServer{engine: SetupRouter(cfg, h, tokens, limiterStore), tokens: tokens}
}

func (s *testServer) token(t *testing.T, actor authz.Actor) string {
	t.Helper()
	token, err := s.tokens.GenerateAccess(actor)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

func TestRouter_EnrollPayApproveFlow(t *testing.T) {
	s := newTestServer(t)
	professor := authz.Actor{UserID: uuid.New(), Email: "prof@okalab.io", Role: authz.RoleProfessor}
	student := authz.Actor{UserID: uuid.New(), Email: "alice@okalab.io", Role: authz.RoleStudent}
	admin := authz.Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: authz.RoleAdmin}

	w := s.do(t, http.MethodPost, "/api/seminars", s.token(t, student), gin.H{"title": "Go", "target_income": "500"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/seminars", s.token(t, professor), gin.H{
		"title":            "Concurrency in Go",
		"target_income":    "500",
		"target_students":  5,
		"payment_due_days": 7,
		"start_date":       time.Now().Add(3 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, w)

	w = s.do(t, http.MethodGet, "/api/seminars/"+created.ID.String()+"/quote", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[seminar.Quote](t, w)
	assert.Equal(t, "500.00", quote.CurrentPrice.StringFixed(2))
	assert.Equal(t, "100.00", quote.MinPrice.StringFixed(2))

	studentToken := s.token(t, student)
	w = s.do(t, http.MethodPost, "/api/seminars/"+created.ID.String()+"/enrollments", studentToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	enrolled := decode[struct {
		ID      uuid.UUID `json:"id"`
		Created bool      `json:"created"`
	}](t, w)
	assert.True(t, enrolled.Created)

	w = s.do(t, http.MethodPost, "/api/seminars/"+created.ID.String()+"/enrollments", studentToken, gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/seminars/enrollment-counts?ids="+created.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int{created.ID.String(): 1}, decode[map[string]int](t, w))

	path := "/api/enrollments/" + enrolled.ID.String()
	w = s.do(t, http.MethodGet, path+"/payability", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[struct {
		Payable bool `json:"payable"`
	}](t, w).Payable)

	w = s.do(t, http.MethodPost, path+"/payment", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, path+"/payment", studentToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_SUBMITTED")

	approve := "/api/admin/enrollments/" + enrolled.ID.String() + "/approve"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, approve, studentToken, nil).Code)
	w = s.do(t, http.MethodPost, approve, s.token(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/wallet?user_type=professor", s.token(t, professor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	balance := decode[struct {
		Balance decimal.Decimal `json:"balance"`
	}](t, w)
	assert.Equal(t, "425.00", balance.Balance.StringFixed(2))

	w = s.do(t, http.MethodDelete, path, studentToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_WithdrawalFlow(t *testing.T) {
	s := newTestServer(t)
	student := authz.Actor{UserID: uuid.New(), Email: "bob@okalab.io", Role: authz.RoleStudent}
	admin := authz.Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: authz.RoleAdmin}
	adminToken := s.token(t, admin)
	studentToken := s.token(t, student)

	w := s.do(t, http.MethodPost, "/api/withdrawals", studentToken, gin.H{
		"amount": "10", "user_type": "student", "method": "bank", "destination": "DE89",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/wallets/credit", adminToken, gin.H{
		"email": "bob@okalab.io", "user_type": "student", "type": "referral_bonus", "amount": "50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/withdrawals", studentToken, gin.H{
		"amount": "30", "user_type": "student", "method": "bank", "destination": "DE89",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	request := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, w)

	w = s.do(t, http.MethodGet, "/api/admin/withdrawals?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, w), 1)

	w = s.do(t, http.MethodPost, "/api/admin/withdrawals/"+request.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/wallet", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[struct {
		Balance        decimal.Decimal `json:"balance"`
		TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	}](t, w)
	assert.Equal(t, "20.00", summary.Balance.StringFixed(2))
	assert.Equal(t, "30.00", summary.TotalWithdrawn.StringFixed(2))

	w = s.do(t, http.MethodGet, "/api/wallet/transactions?limit=1", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_more":true`)
}

func TestRouter_AuthAndValidation(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/wallet", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/ws", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/seminars/not-a-uuid/quote", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/seminars/enrollment-counts", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/seminars/"+uuid.NewString()+"/quote", "", nil).Code)

	admin := authz.Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: authz.RoleAdmin}
	w := s.do(t, http.MethodPut, "/api/admin/settings", s.token(t, admin), gin.H{
		"platform_fee_percent": "120", "surplus_professor_percent": "30",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestRouter_MixedCaseEmailSeesOwnWallet(t *testing.T) {
	s := newTestServer(t)
	admin := authz.Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: authz.RoleAdmin}
	alice := authz.Actor{UserID: uuid.New(), Email: "Alice@Okalab.io", Role: authz.RoleStudent}
	aliceToken := s.token(t, alice)

	w := s.do(t, http.MethodPost, "/api/admin/wallets/credit", s.token(t, admin), gin.H{
		"email": "alice@okalab.io", "user_type": "student", "type": "referral_bonus", "amount": "59.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/wallet?user_type=student", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "59.50", decode[struct {
		Balance decimal.Decimal `json:"balance"`
	}](t, w).Balance.StringFixed(2))

	w = s.do(t, http.MethodPost, "/api/withdrawals", aliceToken, gin.H{
		"amount": "10", "user_type": "student", "method": "bank", "destination": "DE89",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/withdrawals", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, w), 1)
}

func TestRouter_Listings(t *testing.T) {
	s := newTestServer(t)
	professor := authz.Actor{UserID: uuid.New(), Email: "prof@okalab.io", Role: authz.RoleProfessor}
	student := authz.Actor{UserID: uuid.New(), Email: "alice@okalab.io", Role: authz.RoleStudent}
	admin := authz.Actor{UserID: uuid.New(), Email: "admin@okalab.io", Role: authz.RoleAdmin}
	studentToken := s.token(t, student)
	adminToken := s.token(t, admin)

	w := s.do(t, http.MethodPost, "/api/seminars", s.token(t, professor), gin.H{
		"title":            "Concurrency in Go",
		"target_income":    "500",
		"target_students":  5,
		"payment_due_days": 7,
		"start_date":       time.Now().Add(3 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	seminarID := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, w).ID

	w = s.do(t, http.MethodPost, "/api/seminars/"+seminarID.String()+"/enrollments", studentToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	enrollmentID := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, w).ID
	w = s.do(t, http.MethodPost, "/api/enrollments/"+enrollmentID.String()+"/payment", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	type row struct {
		ID            uuid.UUID `json:"id"`
		PaymentStatus string    `json:"payment_status"`
	}

	w = s.do(t, http.MethodGet, "/api/enrollments", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]row](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, enrollmentID, mine[0].ID)

	bySeminar := "/api/seminars/" + seminarID.String() + "/enrollments"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, bySeminar, studentToken, nil).Code)
	w = s.do(t, http.MethodGet, bySeminar, s.token(t, professor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]row](t, w), 1)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/enrollments", studentToken, nil).Code)
	w = s.do(t, http.MethodGet, "/api/admin/enrollments?payment_status=pending_payment", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	queue := decode[[]row](t, w)
	require.Len(t, queue, 1)
	assert.Equal(t, "pending_payment", queue[0].PaymentStatus)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/admin/enrollments?payment_status=bogus", adminToken, nil).Code)

	w = s.do(t, http.MethodPost, "/api/admin/enrollments/"+queue[0].ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/admin/wallets", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	wallets := decode[[]struct {
		UserEmail string `json:"user_email"`
	}](t, w)
	require.Len(t, wallets, 1)
	assert.Equal(t, "prof@okalab.io", wallets[0].UserEmail)

	w = s.do(t, http.MethodGet, "/api/admin/transactions?type=platform_fee", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fees := decode[[]struct {
		UserEmail string `json:"user_email"`
	}](t, w)
	require.Len(t, fees, 1)
	assert.Equal(t, "platform@okalab.io", fees[0].UserEmail)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/transactions", studentToken, nil).Code)
}
