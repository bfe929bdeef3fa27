package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studypath/studypath-api/internal/dto"
	"github.com/studypath/studypath-api/internal/service"
	"github.com/studypath/studypath-api/pkg/response"
)

type advisorService interface {
	Recommendations(ctx context.Context, actor service.Actor, pensumID string) (*dto.AdvisorResponse, error)
	LearningPattern(ctx context.Context, actor service.Actor, pensumID string) (*dto.AdvisorResponse, error)
	StudyPlan(ctx context.Context, actor service.Actor, pensumID string) (*dto.AdvisorResponse, error)
	Test(ctx context.Context, actor service.Actor, name string) (*dto.AdvisorResponse, error)
}

// AdvisorHandler exposes the generative study advisor.
type AdvisorHandler struct {
	service advisorService
}

// NewAdvisorHandler builds a new handler.
func NewAdvisorHandler(svc advisorService) *AdvisorHandler {
	return &AdvisorHandler{service: svc}
}

type advisorCall func(ctx context.Context, actor service.Actor, pensumID string) (*dto.AdvisorResponse, error)

func (h *AdvisorHandler) run(c *gin.Context, call advisorCall) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	resp, err := call(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Recommendations godoc
// @Summary Course recommendations
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pensum ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advisor/{id}/recommendations [post]
func (h *AdvisorHandler) Recommendations(c *gin.Context) {
	h.run(c, h.service.Recommendations)
}

// LearningPattern godoc
// @Summary Learning pattern analysis
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pensum ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advisor/{id}/learning-pattern [post]
func (h *AdvisorHandler) LearningPattern(c *gin.Context) {
	h.run(c, h.service.LearningPattern)
}

// StudyPlan godoc
// @Summary Study plan for next period
// @Tags Advisor
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pensum ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /advisor/{id}/study-plan [post]
func (h *AdvisorHandler) StudyPlan(c *gin.Context) {
	h.run(c, h.service.StudyPlan)
}

// Test godoc
// @Summary Test model connection
// @Tags Advisor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AdvisorTestRequest false "Greeting name"
// @Success 200 {object} response.Envelope
// @Router /advisor/test [post]
func (h *AdvisorHandler) Test(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.AdvisorTestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindError(err, "invalid test payload"))
		return
	}
	resp, err := h.service.Test(c.Request.Context(), actor, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
