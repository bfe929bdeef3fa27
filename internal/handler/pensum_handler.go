package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/dto"
	"github.com/studypath/studypath-api/internal/models"
	"github.com/studypath/studypath-api/internal/service"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
	"github.com/studypath/studypath-api/pkg/response"
)

type pensumService interface {
	Check(doc interface{}) (curriculum.ValidationResult, curriculum.ValidationResult)
	Create(ctx context.Context, actor service.Actor, doc interface{}) (*service.PensumResult, error)
	Get(ctx context.Context, actor service.Actor, id string) (*models.Pensum, error)
	Update(ctx context.Context, actor service.Actor, id string, doc interface{}) (*service.PensumResult, error)
	UpdateProgress(ctx context.Context, actor service.Actor, id string, progress models.Progress) (*service.ProgressResult, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
	ListMine(ctx context.Context, actor service.Actor) ([]models.PensumSummary, error)
	ListPublic(ctx context.Context, page, pageSize int) ([]models.PensumSummary, *models.Pagination, error)
	Search(ctx context.Context, actor service.Actor, term string, publicOnly bool, page, pageSize int) ([]models.PensumSummary, *models.Pagination, error)
	Overview(ctx context.Context, actor service.Actor, id string) (*models.PensumOverview, error)
}

type pensumExporter interface {
	Export(ctx context.Context, actor service.Actor, id string, format service.ExportFormat) (*service.ExportFile, error)
}

// PensumHandler exposes curriculum endpoints.
type PensumHandler struct {
	service  pensumService
	exporter pensumExporter
}

// NewPensumHandler builds a new handler.
func NewPensumHandler(svc pensumService, exporter pensumExporter) *PensumHandler {
	return &PensumHandler{service: svc, exporter: exporter}
}

// ListMine godoc
// @Summary List my curricula
// @Tags Pensums
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /pensums [get]
func (h *PensumHandler) ListMine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	items, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListPublic godoc
// @Summary List shared curricula
// @Tags Pensums
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /pensums/public [get]
func (h *PensumHandler) ListPublic(c *gin.Context) {
	page, size := pageParams(c)
	items, pagination, err := h.service.ListPublic(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Search godoc
// @Summary Search curricula
// @Description Matches career, title or faculty. Anonymous callers only see shared curricula.
// @Tags Pensums
// @Produce json
// @Param q query string true "Search term"
// @Param public query bool false "Only shared curricula"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pensums/search [get]
func (h *PensumHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "q is required"))
		return
	}
	publicOnly := true
	if raw := c.Query("public"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "public must be a boolean"))
			return
		}
		publicOnly = parsed
	}

	page, size := pageParams(c)
	items, pagination, err := h.service.Search(c.Request.Context(), actorFromContext(c), term, publicOnly, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Create curriculum
// @Description Stores a curriculum document. Prerequisite problems are returned in meta.warnings.
// @Tags Pensums
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.PensumDocument true "Curriculum document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /pensums [post]
func (h *PensumHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	doc, err := readDocument(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), actor, doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, http.StatusCreated, result.Pensum, nil, result.Warnings)
}

// Validate godoc
// @Summary Validate curriculum
// @Description Runs the structural and prerequisite checks without storing anything
// @Tags Pensums
// @Accept json
// @Produce json
// @Param payload body models.PensumDocument true "Curriculum document"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /pensums/validate [post]
func (h *PensumHandler) Validate(c *gin.Context) {
	doc, err := readDocument(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	structure, prereqs := h.service.Check(doc)
	response.JSON(c, http.StatusOK, dto.ValidationReport{Structure: structure, Prerequisites: prereqs}, nil)
}

// Get godoc
// @Summary Get curriculum
// @Tags Pensums
// @Produce json
// @Param id path string true "Pensum ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pensums/{id} [get]
func (h *PensumHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// Update godoc
// @Summary Replace curriculum structure
// @Description Progress and ownership are kept
// @Tags Pensums
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pensum ID"
// @Param payload body models.PensumDocument true "Curriculum document"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pensums/{id} [put]
func (h *PensumHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	doc, err := readDocument(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, http.StatusOK, result.Pensum, nil, result.Warnings)
}

// UpdateProgress godoc
// @Summary Save progress
// @Description Replaces the subject status map and returns recalculated stats
// @Tags Pensums
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pensum ID"
// @Param payload body dto.UpdateProgressRequest true "Status map"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pensums/{id}/progress [put]
func (h *PensumHandler) UpdateProgress(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if err := bindJSON(c, &req, "invalid progress payload"); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.UpdateProgress(c.Request.Context(), actor, c.Param("id"), req.Progress)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete curriculum
// @Tags Pensums
// @Security BearerAuth
// @Param id path string true "Pensum ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pensums/{id} [delete]
func (h *PensumHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Overview godoc
// @Summary Tracking view
// @Description Terms with progress, decorated subjects and the subjects available next
// @Tags Pensums
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pensum ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pensums/{id}/overview [get]
func (h *PensumHandler) Overview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Export godoc
// @Summary Export curriculum
// @Description json returns the import document; csv and pdf return a progress report
// @Tags Pensums
// @Produce application/json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Pensum ID"
// @Param format query string false "json, csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pensums/{id}/export [get]
func (h *PensumHandler) Export(c *gin.Context) {
	format, ok := service.ParseExportFormat(c.Query("format"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json, csv or pdf"))
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), actorFromContext(c), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}

func readDocument(c *gin.Context) (interface{}, error) {
	raw, err := readBody(c)
	if err != nil {
		return nil, err
	}
	doc, err := curriculum.ParseDocument(raw)
	if err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "request body is not valid JSON", []string{err.Error()})
	}
	return doc, nil
}
