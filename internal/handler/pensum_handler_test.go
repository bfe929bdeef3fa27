package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/middleware"
	"github.com/studypath/studypath-api/internal/models"
	"github.com/studypath/studypath-api/internal/service"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
)

type pensumServiceMock struct {
	createdWith  interface{}
	createResult *service.PensumResult
	createErr    error
	getErr       error
	progressWith models.Progress
	searchTerm   string
	searchPublic bool
	lastActor    service.Actor
}

func (m *pensumServiceMock) Check(doc interface{}) (curriculum.ValidationResult, curriculum.ValidationResult) {
	return curriculum.ValidateDocument(doc), curriculum.ValidationResult{Valid: true, Errors: []string{}}
}

func (m *pensumServiceMock) Create(ctx context.Context, actor service.Actor, doc interface{}) (*service.PensumResult, error) {
	m.lastActor = actor
	m.createdWith = doc
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResult, nil
}

func (m *pensumServiceMock) Get(ctx context.Context, actor service.Actor, id string) (*models.Pensum, error) {
	m.lastActor = actor
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Pensum{ID: id, Career: "Derecho"}, nil
}

func (m *pensumServiceMock) Update(ctx context.Context, actor service.Actor, id string, doc interface{}) (*service.PensumResult, error) {
	return &service.PensumResult{Pensum: &models.Pensum{ID: id}}, nil
}

func (m *pensumServiceMock) UpdateProgress(ctx context.Context, actor service.Actor, id string, progress models.Progress) (*service.ProgressResult, error) {
	m.progressWith = progress
	return &service.ProgressResult{Progress: progress}, nil
}

func (m *pensumServiceMock) Delete(ctx context.Context, actor service.Actor, id string) error {
	return nil
}

func (m *pensumServiceMock) ListMine(ctx context.Context, actor service.Actor) ([]models.PensumSummary, error) {
	return []models.PensumSummary{}, nil
}

func (m *pensumServiceMock) ListPublic(ctx context.Context, page, pageSize int) ([]models.PensumSummary, *models.Pagination, error) {
	return []models.PensumSummary{}, &models.Pagination{Page: page, PageSize: pageSize}, nil
}

func (m *pensumServiceMock) Search(ctx context.Context, actor service.Actor, term string, publicOnly bool, page, pageSize int) ([]models.PensumSummary, *models.Pagination, error) {
	m.searchTerm = term
	m.searchPublic = publicOnly
	return []models.PensumSummary{}, &models.Pagination{Page: page, PageSize: pageSize}, nil
}

func (m *pensumServiceMock) Overview(ctx context.Context, actor service.Actor, id string) (*models.PensumOverview, error) {
	return &models.PensumOverview{PensumID: id}, nil
}

type exporterMock struct {
	format service.ExportFormat
}

func (m *exporterMock) Export(ctx context.Context, actor service.Actor, id string, format service.ExportFormat) (*service.ExportFile, error) {
	m.format = format
	return &service.ExportFile{Filename: "derecho.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}, nil
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withUser(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", DisplayName: "Ana"})
}

func TestPensumHandlerCreateReturnsWarnings(t *testing.T) {
	svc := &pensumServiceMock{createResult: &service.PensumResult{
		Pensum:   &models.Pensum{ID: "p-1"},
		Warnings: []string{`Prerequisite "X" for subject "Y" does not exist in the pensum`},
	}}
	h := NewPensumHandler(svc, &exporterMock{})
	c, w := newTestContext(http.MethodPost, "/pensums", []byte(`{"career":"Derecho"}`))
	withUser(c)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, []interface{}{`Prerequisite "X" for subject "Y" does not exist in the pensum`}, env.Meta["warnings"])
	assert.Equal(t, service.Actor{UserID: "user-1", DisplayName: "Ana"}, svc.lastActor)
	assert.Equal(t, map[string]interface{}{"career": "Derecho"}, svc.createdWith)
}

func TestPensumHandlerCreateRequiresUser(t *testing.T) {
	h := NewPensumHandler(&pensumServiceMock{}, &exporterMock{})
	c, w := newTestContext(http.MethodPost, "/pensums", []byte(`{}`))

	h.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPensumHandlerCreateMalformedBody(t *testing.T) {
	svc := &pensumServiceMock{}
	h := NewPensumHandler(svc, &exporterMock{})
	c, w := newTestContext(http.MethodPost, "/pensums", []byte(`{"career":`))
	withUser(c)

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.createdWith)
}

func TestPensumHandlerCreateStructureErrors(t *testing.T) {
	svc := &pensumServiceMock{createErr: appErrors.WithDetails(appErrors.ErrValidation, "pensum structure is invalid", []string{"Missing required field: title"})}
	h := NewPensumHandler(svc, &exporterMock{})
	c, w := newTestContext(http.MethodPost, "/pensums", []byte(`{"career":"Derecho"}`))
	withUser(c)

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, []string{"Missing required field: title"}, env.Error.Details)
}

func TestPensumHandlerValidate(t *testing.T) {
	h := NewPensumHandler(&pensumServiceMock{}, &exporterMock{})
	c, w := newTestContext(http.MethodPost, "/pensums/validate", []byte(`{"career":"Derecho","title":"Abogado","faculty":"Ciencias Jurídicas","terms":"x"}`))

	h.Validate(c)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var report struct {
		Structure curriculum.ValidationResult `json:"structure"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.False(t, report.Structure.Valid)
	assert.Equal(t, []string{"Terms must be an array"}, report.Structure.Errors)
}

func TestPensumHandlerGetAnonymous(t *testing.T) {
	svc := &pensumServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "pensum not found")}
	h := NewPensumHandler(svc, &exporterMock{})
	c, w := newTestContext(http.MethodGet, "/pensums/p-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}

	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, svc.lastActor.UserID)
}

func TestPensumHandlerSearch(t *testing.T) {
	svc := &pensumServiceMock{}
	h := NewPensumHandler(svc, &exporterMock{})

	c, w := newTestContext(http.MethodGet, "/pensums/search", nil)
	h.Search(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/pensums/search?q=ingenieria&public=false", nil)
	withUser(c)
	h.Search(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ingenieria", svc.searchTerm)
	assert.False(t, svc.searchPublic)

	c, w = newTestContext(http.MethodGet, "/pensums/search?q=x&public=maybe", nil)
	h.Search(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPensumHandlerUpdateProgress(t *testing.T) {
	svc := &pensumServiceMock{}
	h := NewPensumHandler(svc, &exporterMock{})
	c, w := newTestContext(http.MethodPut, "/pensums/p-1/progress", []byte(`{"progress":{"MAT101":"approved"}}`))
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	withUser(c)

	h.UpdateProgress(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Progress{"MAT101": models.StatusApproved}, svc.progressWith)
}

func TestPensumHandlerExport(t *testing.T) {
	exporter := &exporterMock{}
	h := NewPensumHandler(&pensumServiceMock{}, exporter)

	c, w := newTestContext(http.MethodGet, "/pensums/p-1/export?format=xml", nil)
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/pensums/p-1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, exporter.format)
	assert.Equal(t, `attachment; filename="derecho.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
