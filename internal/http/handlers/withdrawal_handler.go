package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/okalab/okalab-backend/internal/dto"
	"github.com/okalab/okalab-backend/internal/http/handlers/common"
	"github.com/okalab/okalab-backend/internal/http/response"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/usecase/withdrawal"
)

// WithdrawalHandler заявки на вывод средств.
type WithdrawalHandler struct {
	withdrawals *withdrawal.Processor
}

func NewWithdrawalHandler(processor *withdrawal.Processor) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: processor}
}

// Request обрабатывает POST /api/withdrawals.
func (h *WithdrawalHandler) Request(c *gin.Context) {
	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	w, err := h.withdrawals.Request(c.Request.Context(), withdrawal.RequestInput{
		Actor:       common.CurrentActor(c),
		UserType:    req.UserType,
		Amount:      req.Amount,
		Method:      req.Method,
		Destination: req.Destination,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, w)
}

// ListMine обрабатывает GET /api/withdrawals.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	list, err := h.withdrawals.ListMine(c.Request.Context(), common.CurrentActor(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, list, len(list), limit, offset)
}

// ListAll обрабатывает GET /api/admin/withdrawals?status=.
func (h *WithdrawalHandler) ListAll(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	list, err := h.withdrawals.ListAll(c.Request.Context(), common.CurrentActor(c), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, list, len(list), limit, offset)
}

// Approve обрабатывает POST /api/admin/withdrawals/:id/approve.
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	w, err := h.withdrawals.Approve(c.Request.Context(), common.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, w)
}

// Reject обрабатывает POST /api/admin/withdrawals/:id/reject.
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RejectRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	w, err := h.withdrawals.Reject(c.Request.Context(), common.CurrentActor(c), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, w)
}
