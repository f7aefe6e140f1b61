package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okalab/okalab-backend/internal/dto"
	"github.com/okalab/okalab-backend/internal/http/handlers/common"
	"github.com/okalab/okalab-backend/internal/http/response"
	"github.com/okalab/okalab-backend/internal/pkg/authz"
	"github.com/okalab/okalab-backend/internal/usecase/ledger"
	"github.com/okalab/okalab-backend/internal/validation"
)

// WalletHandler баланс и история транзакций текущего пользователя, операции администратора с кошельками.
type WalletHandler struct {
	ledger *ledger.Service
}

func NewWalletHandler(service *ledger.Service) *WalletHandler {
	return &WalletHandler{ledger: service}
}

// Balance обрабатывает GET /api/wallet?user_type=.
func (h *WalletHandler) Balance(c *gin.Context) {
	actor := common.CurrentActor(c)
	if err := authz.RequireAuthenticated(actor); err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.ledger.GetBalanceSummary(c.Request.Context(), actor.Email, c.Query("user_type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}

// Transactions обрабатывает GET /api/wallet/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	actor := common.CurrentActor(c)
	if err := authz.RequireAuthenticated(actor); err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := common.GetPagination(c)
	txs, err := h.ledger.ListTransactions(c.Request.Context(), actor.Email, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, txs, len(txs), limit, offset)
}

// Credit обрабатывает POST /api/admin/wallets/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса")
		return
	}
	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		response.Error(c, err)
		return
	}

	tx, err := h.ledger.Credit(c.Request.Context(), common.CurrentActor(c), ledger.CreditInput{
		Email:       email,
		UserType:    req.UserType,
		Type:        req.Type,
		Amount:      req.Amount,
		SeminarID:   req.SeminarID,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tx)
}

// ListWallets обрабатывает GET /api/admin/wallets.
func (h *WalletHandler) ListWallets(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	wallets, err := h.ledger.ListWallets(c.Request.Context(), common.CurrentActor(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, wallets, len(wallets), limit, offset)
}

// ListAllTransactions обрабатывает GET /api/admin/transactions?type=&status=.
func (h *WalletHandler) ListAllTransactions(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	txs, err := h.ledger.ListAllTransactions(c.Request.Context(), common.CurrentActor(c), c.Query("type"), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, txs, len(txs), limit, offset)
}

// Reconcile обрабатывает GET /api/admin/wallets/:id/reconcile.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	if err := authz.RequireRole(common.CurrentActor(c), authz.RoleAdmin); err != nil {
		response.Error(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.ledger.Reconcile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
