package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
)

const defaultPensumVersion = "1.0"

type pensumRepository interface {
	Create(ctx context.Context, p *models.Pensum) error
	FindByID(ctx context.Context, id string) (*models.Pensum, error)
	ListByUser(ctx context.Context, userID string) ([]models.Pensum, error)
	List(ctx context.Context, filter models.PensumFilter) ([]models.Pensum, int, error)
	Update(ctx context.Context, p *models.Pensum) error
	UpdateProgress(ctx context.Context, id string, progress models.Progress, updatedAt time.Time) error
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
}

type validationRecorder interface {
	RecordValidation(stage, outcome string)
}

// Actor identifies the authenticated caller.
type Actor struct {
	UserID      string
	DisplayName string
}

// PensumResult carries a stored curriculum and any prerequisite warnings.
type PensumResult struct {
	Pensum   *models.Pensum
	Warnings []string
}

// ProgressResult is returned after a status map is saved.
type ProgressResult struct {
	Progress models.Progress      `json:"progress"`
	Stats    models.ProgressStats `json:"stats"`
}

// PensumService implements curriculum CRUD and progress tracking.
type PensumService struct {
	repo    pensumRepository
	metrics validationRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewPensumService constructs a PensumService.
func NewPensumService(repo pensumRepository, metrics validationRecorder, logger *zap.Logger) *PensumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	return &PensumService{repo: repo, metrics: metrics, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Check runs both validators without persisting anything.
func (s *PensumService) Check(doc interface{}) (curriculum.ValidationResult, curriculum.ValidationResult) {
	structure := curriculum.ValidateDocument(doc)
	s.recordSchema(structure)
	if !structure.Valid {
		return structure, curriculum.ValidationResult{Valid: true, Errors: []string{}}
	}
	p, err := curriculum.ToPensum(doc)
	if err != nil {
		return curriculum.ValidationResult{Valid: false, Errors: []string{err.Error()}}, curriculum.ValidationResult{Valid: true, Errors: []string{}}
	}
	prereqs := curriculum.ValidatePrerequisites(p)
	s.recordPrerequisites(prereqs)
	return structure, prereqs
}

// Create validates doc and stores it for actor. Structural errors reject the
// document; prerequisite problems are returned as warnings.
func (s *PensumService) Create(ctx context.Context, actor Actor, doc interface{}) (*PensumResult, error) {
	p, warnings, err := s.decode(doc)
	if err != nil {
		return nil, err
	}

	p.ID = ""
	p.UserID = actor.UserID
	p.UserName = actor.DisplayName
	p.CreatedAt = time.Time{}
	p.DeletedAt = nil
	if strings.TrimSpace(p.Version) == "" {
		p.Version = defaultPensumVersion
	}
	if p.Progress == nil {
		p.Progress = models.Progress{}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create pensum")
	}

	s.logger.Info("pensum created", zap.String("pensum_id", p.ID), zap.String("user_id", actor.UserID), zap.Int("warnings", len(warnings)))
	return &PensumResult{Pensum: p, Warnings: warnings}, nil
}

// Get returns a curriculum visible to actor. Progress is only included for
// the owner.
func (s *PensumService) Get(ctx context.Context, actor Actor, id string) (*models.Pensum, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID == actor.UserID {
		return p, nil
	}
	if !p.IsPublic {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "pensum not found")
	}
	p.Progress = nil
	return p, nil
}

// Update replaces the structure of an owned curriculum. Progress and
// ownership are preserved.
func (s *PensumService) Update(ctx context.Context, actor Actor, id string, doc interface{}) (*PensumResult, error) {
	existing, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	p, warnings, err := s.decode(doc)
	if err != nil {
		return nil, err
	}

	p.ID = existing.ID
	p.UserID = existing.UserID
	p.UserName = existing.UserName
	p.CreatedAt = existing.CreatedAt
	p.Progress = existing.Progress
	if strings.TrimSpace(p.Version) == "" {
		p.Version = existing.Version
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pensum not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update pensum")
	}
	return &PensumResult{Pensum: p, Warnings: warnings}, nil
}

// UpdateProgress replaces the owner's status map wholesale and returns the
// recalculated stats.
func (s *PensumService) UpdateProgress(ctx context.Context, actor Actor, id string, progress models.Progress) (*ProgressResult, error) {
	if details := invalidStatusDetails(progress); len(details) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid progress status", details)
	}

	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = models.Progress{}
	}

	if err := s.repo.UpdateProgress(ctx, p.ID, progress, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pensum not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}

	return &ProgressResult{Progress: progress, Stats: curriculum.CalculateStats(p, progress)}, nil
}

// Delete logically removes an owned curriculum.
func (s *PensumService) Delete(ctx context.Context, actor Actor, id string) error {
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, p.ID, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pensum not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete pensum")
	}
	s.logger.Info("pensum deleted", zap.String("pensum_id", p.ID), zap.String("user_id", actor.UserID))
	return nil
}

// ListMine returns the actor's curricula with progress stats.
func (s *PensumService) ListMine(ctx context.Context, actor Actor) ([]models.PensumSummary, error) {
	pensums, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pensums")
	}
	return summarize(pensums, true), nil
}

// ListPublic returns a page of shared curricula.
func (s *PensumService) ListPublic(ctx context.Context, page, pageSize int) ([]models.PensumSummary, *models.Pagination, error) {
	return s.list(ctx, models.PensumFilter{PublicOnly: true, Page: page, PageSize: pageSize})
}

// Search matches career, title or faculty. When publicOnly is false the
// actor's private curricula are searched too.
func (s *PensumService) Search(ctx context.Context, actor Actor, term string, publicOnly bool, page, pageSize int) ([]models.PensumSummary, *models.Pagination, error) {
	filter := models.PensumFilter{Search: term, Page: page, PageSize: pageSize}
	if publicOnly || actor.UserID == "" {
		filter.PublicOnly = true
	} else {
		filter.VisibleTo = actor.UserID
	}
	return s.list(ctx, filter)
}

// Overview returns the tracking view of an owned curriculum.
func (s *PensumService) Overview(ctx context.Context, actor Actor, id string) (*models.PensumOverview, error) {
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	overview := curriculum.Overview(p, p.Progress)
	return &overview, nil
}

// Owned loads a curriculum the actor may mutate.
func (s *PensumService) Owned(ctx context.Context, actor Actor, id string) (*models.Pensum, error) {
	return s.loadOwned(ctx, actor, id)
}

func (s *PensumService) list(ctx context.Context, filter models.PensumFilter) ([]models.PensumSummary, *models.Pagination, error) {
	pensums, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pensums")
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	return summarize(pensums, false), &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *PensumService) decode(doc interface{}) (*models.Pensum, []string, error) {
	structure := curriculum.ValidateDocument(doc)
	s.recordSchema(structure)
	if !structure.Valid {
		return nil, nil, appErrors.WithDetails(appErrors.ErrValidation, "pensum structure is invalid", structure.Errors)
	}

	p, err := curriculum.ToPensum(doc)
	if err != nil {
		return nil, nil, appErrors.WithDetails(appErrors.ErrInvalidPensum, "pensum could not be decoded", []string{err.Error()})
	}
	if details := invalidStatusDetails(p.Progress); len(details) > 0 {
		return nil, nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid progress status", details)
	}

	prereqs := curriculum.ValidatePrerequisites(p)
	s.recordPrerequisites(prereqs)
	if !prereqs.Valid {
		s.logger.Warn("pensum has non-standard prerequisites",
			zap.String("career", p.Career),
			zap.Int("count", len(prereqs.Errors)),
			zap.Strings("errors", prereqs.Errors))
	}
	return p, prereqs.Errors, nil
}

func (s *PensumService) load(ctx context.Context, id string) (*models.Pensum, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pensum not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pensum")
	}
	return p, nil
}

func (s *PensumService) loadOwned(ctx context.Context, actor Actor, id string) (*models.Pensum, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != actor.UserID {
		if p.IsPublic {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner can modify this pensum")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "pensum not found")
	}
	return p, nil
}

func (s *PensumService) recordSchema(result curriculum.ValidationResult) {
	outcome := OutcomeValid
	if !result.Valid {
		outcome = OutcomeInvalid
	}
	s.metrics.RecordValidation("schema", outcome)
}

func (s *PensumService) recordPrerequisites(result curriculum.ValidationResult) {
	outcome := OutcomeValid
	if !result.Valid {
		outcome = OutcomeWarning
	}
	s.metrics.RecordValidation("prerequisites", outcome)
}

func invalidStatusDetails(progress models.Progress) []string {
	var details []string
	for _, code := range progress.Invalid() {
		details = append(details, fmt.Sprintf("invalid status %q for subject %s", progress[code], code))
	}
	return details
}

func summarize(pensums []models.Pensum, withProgress bool) []models.PensumSummary {
	summaries := make([]models.PensumSummary, 0, len(pensums))
	for i := range pensums {
		p := &pensums[i]
		var progress models.Progress
		if withProgress {
			progress = p.Progress
		}
		summaries = append(summaries, models.PensumSummary{
			ID:        p.ID,
			Career:    p.Career,
			Title:     p.Title,
			Faculty:   p.Faculty,
			Version:   p.Version,
			IsPublic:  p.IsPublic,
			UserName:  p.UserName,
			Stats:     curriculum.CalculateStats(p, progress),
			UpdatedAt: p.UpdatedAt,
		})
	}
	return summaries
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
