package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
)

type mockPensumRepo struct {
	pensums        map[string]*models.Pensum
	created        []*models.Pensum
	updated        []*models.Pensum
	progressSaved  models.Progress
	deleted        []string
	lastFilter     models.PensumFilter
	listResult     []models.Pensum
	listTotal      int
	createErr      error
	findErr        error
	updateProgress error
}

func newMockPensumRepo(pensums ...*models.Pensum) *mockPensumRepo {
	repo := &mockPensumRepo{pensums: make(map[string]*models.Pensum)}
	for _, p := range pensums {
		repo.pensums[p.ID] = p
	}
	return repo
}

func (m *mockPensumRepo) Create(ctx context.Context, p *models.Pensum) error {
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = "pensum-new"
	p.CreatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p.UpdatedAt = p.CreatedAt
	m.created = append(m.created, p)
	m.pensums[p.ID] = p
	return nil
}

func (m *mockPensumRepo) FindByID(ctx context.Context, id string) (*models.Pensum, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	p, ok := m.pensums[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (m *mockPensumRepo) ListByUser(ctx context.Context, userID string) ([]models.Pensum, error) {
	var out []models.Pensum
	for _, p := range m.pensums {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPensumRepo) List(ctx context.Context, filter models.PensumFilter) ([]models.Pensum, int, error) {
	m.lastFilter = filter
	return m.listResult, m.listTotal, nil
}

func (m *mockPensumRepo) Update(ctx context.Context, p *models.Pensum) error {
	m.updated = append(m.updated, p)
	return nil
}

func (m *mockPensumRepo) UpdateProgress(ctx context.Context, id string, progress models.Progress, updatedAt time.Time) error {
	if m.updateProgress != nil {
		return m.updateProgress
	}
	m.progressSaved = progress
	return nil
}

func (m *mockPensumRepo) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	if _, ok := m.pensums[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type recordedValidation struct{ stage, outcome string }

type mockValidationRecorder struct {
	calls []recordedValidation
}

func (m *mockValidationRecorder) RecordValidation(stage, outcome string) {
	m.calls = append(m.calls, recordedValidation{stage, outcome})
}

var owner = Actor{UserID: "user-1", DisplayName: "Ana"}
var stranger = Actor{UserID: "user-2", DisplayName: "Luis"}

func sampleDocument() map[string]interface{} {
	return map[string]interface{}{
		"career":  "Ingeniería de Sistemas",
		"title":   "Ingeniero de Sistemas",
		"faculty": "Ingeniería",
		"terms": []interface{}{
			map[string]interface{}{
				"number": float64(1),
				"name":   "Primer cuatrimestre",
				"subjects": []interface{}{
					map[string]interface{}{"code": "MAT101", "name": "Cálculo I", "credits": float64(4)},
					map[string]interface{}{"code": "PRG101", "name": "Programación I", "credits": float64(3)},
				},
			},
			map[string]interface{}{
				"number": float64(2),
				"name":   "Segundo cuatrimestre",
				"subjects": []interface{}{
					map[string]interface{}{"code": "MAT201", "name": "Cálculo II", "credits": float64(4), "prerequisites": []interface{}{"MAT101"}},
					map[string]interface{}{"code": "PRG201", "name": "Programación II", "credits": float64(3), "prerequisites": []interface{}{"PRG101", "FIS999"}},
				},
			},
		},
	}
}

func samplePensum(id, userID string, public bool) *models.Pensum {
	p, err := curriculum.ToPensum(sampleDocument())
	if err != nil {
		panic(err)
	}
	p.ID = id
	p.UserID = userID
	p.UserName = "Ana"
	p.Version = "2024"
	p.IsPublic = public
	p.Progress = models.Progress{"MAT101": models.StatusApproved, "PRG101": models.StatusInProgress}
	return p
}

func TestPensumServiceCreateAppliesDefaults(t *testing.T) {
	repo := newMockPensumRepo()
	recorder := &mockValidationRecorder{}
	svc := NewPensumService(repo, recorder, zap.NewNop())

	result, err := svc.Create(context.Background(), owner, sampleDocument())
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	created := repo.created[0]
	assert.Equal(t, "pensum-new", result.Pensum.ID)
	assert.Equal(t, owner.UserID, created.UserID)
	assert.Equal(t, "Ana", created.UserName)
	assert.Equal(t, "1.0", created.Version)
	assert.False(t, created.IsPublic)
	assert.NotNil(t, created.Progress)
	assert.Equal(t, []string{`Prerequisite "FIS999" for subject "PRG201" does not exist in the pensum`}, result.Warnings)
	assert.Equal(t, []recordedValidation{{"schema", OutcomeValid}, {"prerequisites", OutcomeWarning}}, recorder.calls)
}

func TestPensumServiceCreateRejectsInvalidStructure(t *testing.T) {
	repo := newMockPensumRepo()
	svc := NewPensumService(repo, nil, zap.NewNop())

	doc := sampleDocument()
	delete(doc, "faculty")

	_, err := svc.Create(context.Background(), owner, doc)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, []string{"Missing required field: faculty"}, appErr.Details)
	assert.Empty(t, repo.created)
}

func TestPensumServiceCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewPensumService(newMockPensumRepo(), nil, zap.NewNop())

	doc := sampleDocument()
	doc["progress"] = map[string]interface{}{"MAT101": "done"}

	_, err := svc.Create(context.Background(), owner, doc)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, []string{`invalid status "done" for subject MAT101`}, appErr.Details)
}

func TestPensumServiceCreateRejectsUndecodableValues(t *testing.T) {
	svc := NewPensumService(newMockPensumRepo(), nil, zap.NewNop())

	doc := sampleDocument()
	subject := doc["terms"].([]interface{})[0].(map[string]interface{})["subjects"].([]interface{})[0].(map[string]interface{})
	subject["credits"] = "four"

	_, err := svc.Create(context.Background(), owner, doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidPensum))
}

func TestPensumServiceGetVisibility(t *testing.T) {
	repo := newMockPensumRepo(samplePensum("private", owner.UserID, false), samplePensum("shared", owner.UserID, true))
	svc := NewPensumService(repo, nil, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Get(ctx, owner, "private")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Progress)

	_, err = svc.Get(ctx, stranger, "private")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	p, err = svc.Get(ctx, stranger, "shared")
	require.NoError(t, err)
	assert.Nil(t, p.Progress)

	_, err = svc.Get(ctx, owner, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestPensumServiceUpdatePreservesOwnershipAndProgress(t *testing.T) {
	existing := samplePensum("p-1", owner.UserID, false)
	existing.CreatedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMockPensumRepo(existing)
	svc := NewPensumService(repo, nil, zap.NewNop())

	doc := sampleDocument()
	doc["title"] = "Licenciatura en Sistemas"

	result, err := svc.Update(context.Background(), owner, "p-1", doc)
	require.NoError(t, err)
	require.Len(t, repo.updated, 1)

	updated := repo.updated[0]
	assert.Equal(t, "p-1", updated.ID)
	assert.Equal(t, "Licenciatura en Sistemas", result.Pensum.Title)
	assert.Equal(t, existing.CreatedAt, updated.CreatedAt)
	assert.Equal(t, existing.Progress, updated.Progress)
	assert.Equal(t, "2024", updated.Version)
}

func TestPensumServiceMutationsRequireOwner(t *testing.T) {
	repo := newMockPensumRepo(samplePensum("private", owner.UserID, false), samplePensum("shared", owner.UserID, true))
	svc := NewPensumService(repo, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Update(ctx, stranger, "shared", sampleDocument())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = svc.Delete(ctx, stranger, "private")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.UpdateProgress(ctx, stranger, "shared", models.Progress{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.updated)
	assert.Empty(t, repo.deleted)
}

func TestPensumServiceUpdateProgress(t *testing.T) {
	repo := newMockPensumRepo(samplePensum("p-1", owner.UserID, false))
	svc := NewPensumService(repo, nil, zap.NewNop())

	progress := models.Progress{"MAT101": models.StatusApproved, "MAT201": models.StatusApproved}
	result, err := svc.UpdateProgress(context.Background(), owner, "p-1", progress)
	require.NoError(t, err)

	assert.Equal(t, progress, repo.progressSaved)
	assert.Equal(t, 8, result.Stats.ApprovedCredits)
	assert.Equal(t, 14, result.Stats.TotalCredits)
	assert.Equal(t, 57, result.Stats.ProgressPercentage)

	_, err = svc.UpdateProgress(context.Background(), owner, "p-1", models.Progress{"MAT101": "passed"})
	require.Error(t, err)
	assert.Equal(t, []string{`invalid status "passed" for subject MAT101`}, appErrors.FromError(err).Details)
}

func TestPensumServiceDelete(t *testing.T) {
	repo := newMockPensumRepo(samplePensum("p-1", owner.UserID, false))
	svc := NewPensumService(repo, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), owner, "p-1"))
	assert.Equal(t, []string{"p-1"}, repo.deleted)
}

func TestPensumServiceListMineIncludesStats(t *testing.T) {
	repo := newMockPensumRepo(samplePensum("p-1", owner.UserID, false), samplePensum("p-2", stranger.UserID, true))
	svc := NewPensumService(repo, nil, zap.NewNop())

	summaries, err := svc.ListMine(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "p-1", summaries[0].ID)
	assert.Equal(t, 4, summaries[0].Stats.ApprovedCredits)
	assert.Equal(t, 29, summaries[0].Stats.ProgressPercentage)
}

func TestPensumServiceSearchScopes(t *testing.T) {
	repo := newMockPensumRepo()
	repo.listResult = []models.Pensum{*samplePensum("p-1", stranger.UserID, true)}
	repo.listTotal = 1
	svc := NewPensumService(repo, nil, zap.NewNop())
	ctx := context.Background()

	summaries, pagination, err := svc.Search(ctx, owner, "sistemas", false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, repo.lastFilter.VisibleTo)
	assert.False(t, repo.lastFilter.PublicOnly)
	assert.Equal(t, "sistemas", repo.lastFilter.Search)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].Stats.ApprovedCredits)

	_, _, err = svc.Search(ctx, owner, "sistemas", true, 2, 10)
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.PublicOnly)
	assert.Empty(t, repo.lastFilter.VisibleTo)

	_, _, err = svc.ListPublic(ctx, 1, 500)
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.PublicOnly)
}

func TestPensumServiceCheck(t *testing.T) {
	svc := NewPensumService(newMockPensumRepo(), nil, zap.NewNop())

	structure, prereqs := svc.Check(sampleDocument())
	assert.True(t, structure.Valid)
	assert.False(t, prereqs.Valid)
	assert.Len(t, prereqs.Errors, 1)

	structure, prereqs = svc.Check(map[string]interface{}{})
	assert.False(t, structure.Valid)
	assert.Len(t, structure.Errors, 4)
	assert.True(t, prereqs.Valid)
}

func TestPensumServiceOverview(t *testing.T) {
	repo := newMockPensumRepo(samplePensum("p-1", owner.UserID, false))
	svc := NewPensumService(repo, nil, zap.NewNop())

	overview, err := svc.Overview(context.Background(), owner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", overview.PensumID)
	require.Len(t, overview.Terms, 2)
	assert.Equal(t, 50, overview.Terms[0].Progress.Percentage)

	codes := make([]string, 0, len(overview.Available))
	for _, s := range overview.Available {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"MAT201"}, codes)
}
