package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studypath/studypath-api/internal/models"
	"github.com/studypath/studypath-api/internal/service"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
	"github.com/studypath/studypath-api/pkg/response"
)

type importService interface {
	Preview(ctx context.Context, actor service.Actor, raw []byte, normalize bool) (*models.ImportPreview, error)
	Confirm(ctx context.Context, actor service.Actor, token string) (*service.PensumResult, error)
}

// ImportHandler exposes the two-step import workflow.
type ImportHandler struct {
	service importService
}

// NewImportHandler builds a new handler.
func NewImportHandler(svc importService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Preview godoc
// @Summary Preview an import
// @Description Parses and validates an uploaded document. Valid documents return a draft token.
// @Tags Imports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param normalize query bool false "Map foreign field names before validating"
// @Param payload body object true "Curriculum document"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /imports/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	normalize := false
	if raw := c.Query("normalize"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "normalize must be a boolean"))
			return
		}
		normalize = parsed
	}

	raw, err := readBody(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), actor, raw, normalize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Confirm godoc
// @Summary Confirm an import
// @Tags Imports
// @Produce json
// @Security BearerAuth
// @Param token path string true "Draft token"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /imports/{token}/confirm [post]
func (h *ImportHandler) Confirm(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := h.service.Confirm(c.Request.Context(), actor, c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, http.StatusCreated, result.Pensum, nil, result.Warnings)
}
