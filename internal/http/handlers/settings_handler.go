package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/okalab/okalab-backend/internal/dto"
	"github.com/okalab/okalab-backend/internal/http/handlers/common"
	"github.com/okalab/okalab-backend/internal/http/response"
	"github.com/okalab/okalab-backend/internal/pkg/apperror"
	"github.com/okalab/okalab-backend/internal/usecase/seminar"
)

// SettingsHandler глобальные проценты платформы.
type SettingsHandler struct {
	settings *seminar.SettingsUseCase
}

func NewSettingsHandler(settings *seminar.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get обрабатывает GET /api/admin/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context(), common.CurrentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}

// Update обрабатывает PUT /api/admin/settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса"))
		return
	}

	s, err := h.settings.Update(c.Request.Context(), common.CurrentActor(c), seminar.UpdateSettingsInput{
		PlatformFeePercent:      req.PlatformFeePercent,
		SurplusProfessorPercent: req.SurplusProfessorPercent,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}
