package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studypath/studypath-api/internal/dto"
	"github.com/studypath/studypath-api/internal/models"
	"github.com/studypath/studypath-api/pkg/response"
)

type settingsService interface {
	GetAISettings(ctx context.Context, userID string) (*dto.AISettingsResponse, error)
	UpdateAISettings(ctx context.Context, userID string, req dto.UpdateAISettingsRequest) (*dto.AISettingsResponse, error)
	GetSchedule(ctx context.Context, userID string) (*models.Schedule, error)
	UpdateSchedule(ctx context.Context, userID string, req dto.UpdateScheduleRequest) (*models.Schedule, error)
}

// SettingsHandler exposes per-user settings.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(svc settingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// GetAI godoc
// @Summary Get AI settings
// @Description The API key is never returned, only whether one is stored
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /settings/ai [get]
func (h *SettingsHandler) GetAI(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	settings, err := h.service.GetAISettings(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateAI godoc
// @Summary Update AI settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateAISettingsRequest true "Partial update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/ai [put]
func (h *SettingsHandler) UpdateAI(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.UpdateAISettingsRequest
	if err := bindJSON(c, &req, "invalid ai settings payload"); err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.service.UpdateAISettings(c.Request.Context(), actor.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// GetSchedule godoc
// @Summary Get class schedule
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /settings/schedule [get]
func (h *SettingsHandler) GetSchedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	schedule, err := h.service.GetSchedule(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// UpdateSchedule godoc
// @Summary Replace class schedule
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateScheduleRequest true "Weekly classes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/schedule [put]
func (h *SettingsHandler) UpdateSchedule(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.UpdateScheduleRequest
	if err := bindJSON(c, &req, "invalid schedule payload"); err != nil {
		response.Error(c, err)
		return
	}
	schedule, err := h.service.UpdateSchedule(c.Request.Context(), actor.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}
