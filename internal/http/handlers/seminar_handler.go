package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/okalab/okalab-backend/internal/dto"
	"github.com/okalab/okalab-backend/internal/http/handlers/common"
	"github.com/okalab/okalab-backend/internal/http/response"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/usecase/seminar"
)

// SeminarHandler создание семинаров и котировки цены.
type SeminarHandler struct {
	create *seminar.CreateSeminarUseCase
	quote  *seminar.QuoteUseCase
	counts *seminar.CountsUseCase
}

func NewSeminarHandler(create *seminar.CreateSeminarUseCase, quote *seminar.QuoteUseCase, counts *seminar.CountsUseCase) *SeminarHandler {
	return &SeminarHandler{create: create, quote: quote, counts: counts}
}

// Create обрабатывает POST /api/seminars.
func (h *SeminarHandler) Create(c *gin.Context) {
	var req dto.CreateSeminarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	s, err := h.create.Execute(c.Request.Context(), seminar.CreateSeminarInput{
		Actor:                 common.CurrentActor(c),
		Title:                 req.Title,
		TargetIncome:          req.TargetIncome,
		TargetStudents:        req.TargetStudents,
		MaxStudents:           req.MaxStudents,
		Price:                 req.Price,
		PlatformFeePercent:    req.PlatformFeePercent,
		ProfessorBonusPercent: req.ProfessorBonusPercent,
		PaymentDueDays:        req.PaymentDueDays,
		StartDate:             req.StartDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, s)
}

// Quote обрабатывает GET /api/seminars/:id/quote.
func (h *SeminarHandler) Quote(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	q, err := h.quote.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, q)
}

// Counts обрабатывает GET /api/seminars/enrollment-counts?ids=a,b.
func (h *SeminarHandler) Counts(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		response.BadRequest(c, "параметр ids обязателен")
		return
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			response.BadRequest(c, "ids должны быть валидными UUID")
			return
		}
		ids = append(ids, id)
	}

	counts, err := h.counts.Execute(c.Request.Context(), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCountsResponse(counts))
}
