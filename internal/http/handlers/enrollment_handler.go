package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/okalab/okalab-backend/internal/dto"
	"github.com/okalab/okalab-backend/internal/http/handlers/common"
	"github.com/okalab/okalab-backend/internal/http/response"
	"github.com/okalab/okalab-backend/internal/usecase/enrollment"
)

// EnrollmentHandler запись на семинар, отмена, проверка доступности оплаты и списки записей.
type EnrollmentHandler struct {
	enroll     *enrollment.EnrollUseCase
	cancel     *enrollment.CancelEnrollmentUseCase
	payability *enrollment.PayabilityUseCase
	list       *enrollment.ListEnrollmentsUseCase
}

func NewEnrollmentHandler(
	enroll *enrollment.EnrollUseCase,
	cancel *enrollment.CancelEnrollmentUseCase,
	payability *enrollment.PayabilityUseCase,
	list *enrollment.ListEnrollmentsUseCase,
) *EnrollmentHandler {
	return &EnrollmentHandler{enroll: enroll, cancel: cancel, payability: payability, list: list}
}

// Enroll обрабатывает POST /api/seminars/:id/enrollments.
// Повторная запись возвращает существующую с кодом 200.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	seminarID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.EnrollRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.enroll.Execute(c.Request.Context(), enrollment.EnrollInput{
		Actor:        common.CurrentActor(c),
		SeminarID:    seminarID,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	body := dto.EnrollResponse{Enrollment: res.Enrollment, Created: res.Created}
	if res.Created {
		response.Created(c, body)
		return
	}
	response.Success(c, body)
}

// Cancel обрабатывает DELETE /api/enrollments/:id.
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	e, err := h.cancel.Execute(c.Request.Context(), common.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, e)
}

// Payability обрабатывает GET /api/enrollments/:id/payability.
func (h *EnrollmentHandler) Payability(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := h.payability.Execute(c.Request.Context(), common.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// ListMine обрабатывает GET /api/enrollments.
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	list, err := h.list.Mine(c.Request.Context(), common.CurrentActor(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, list, len(list), limit, offset)
}

// ListBySeminar обрабатывает GET /api/seminars/:id/enrollments.
func (h *EnrollmentHandler) ListBySeminar(c *gin.Context) {
	seminarID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := common.GetPagination(c)
	list, err := h.list.BySeminar(c.Request.Context(), common.CurrentActor(c), seminarID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, list, len(list), limit, offset)
}

// ListAll обрабатывает GET /api/admin/enrollments?payment_status=.
func (h *EnrollmentHandler) ListAll(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	list, err := h.list.All(c.Request.Context(), common.CurrentActor(c), c.Query("payment_status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, list, len(list), limit, offset)
}
