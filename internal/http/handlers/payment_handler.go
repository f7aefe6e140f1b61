package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/okalab/okalab-backend/internal/dto"
	"github.com/okalab/okalab-backend/internal/http/handlers/common"
	"github.com/okalab/okalab-backend/internal/http/response"
	"github.com/okalab/okalab-backend/internal/usecase/payment"
)

// PaymentHandler отправка оплаты и её проверка администратором.
type PaymentHandler struct {
	submit  *payment.SubmitPaymentUseCase
	approve *payment.ApprovePaymentUseCase
	reject  *payment.RejectPaymentUseCase
}

func NewPaymentHandler(submit *payment.SubmitPaymentUseCase, approve *payment.ApprovePaymentUseCase, reject *payment.RejectPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{submit: submit, approve: approve, reject: reject}
}

// Submit обрабатывает POST /api/enrollments/:id/payment.
func (h *PaymentHandler) Submit(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	e, err := h.submit.Execute(c.Request.Context(), common.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, e)
}

// Approve обрабатывает POST /api/admin/enrollments/:id/approve.
func (h *PaymentHandler) Approve(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.approve.Execute(c.Request.Context(), common.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Reject обрабатывает POST /api/admin/enrollments/:id/reject.
func (h *PaymentHandler) Reject(c *gin.Context) {
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

	e, err := h.reject.Execute(c.Request.Context(), common.CurrentActor(c), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, e)
}
