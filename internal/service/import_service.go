package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
)

type importDraftStore interface {
	Save(ctx context.Context, draft *models.ImportDraft, ttl time.Duration) error
	Get(ctx context.Context, token string) (*models.ImportDraft, error)
	Delete(ctx context.Context, token string) error
}

type pensumCreator interface {
	Create(ctx context.Context, actor Actor, doc interface{}) (*PensumResult, error)
}

type importRecorder interface {
	RecordImport(step, outcome string)
}

// ImportConfig tunes the preview workflow.
type ImportConfig struct {
	DraftTTL time.Duration
}

// ImportService turns uploaded documents into curricula in two steps:
// preview, which validates and parks a draft, and confirm, which persists it.
type ImportService struct {
	drafts     importDraftStore
	pensums    pensumCreator
	normalizer *curriculum.Normalizer
	metrics    importRecorder
	logger     *zap.Logger
	cfg        ImportConfig
	now        func() time.Time
}

// NewImportService constructs an ImportService.
func NewImportService(drafts importDraftStore, pensums pensumCreator, metrics importRecorder, cfg ImportConfig, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = 30 * time.Minute
	}
	return &ImportService{
		drafts:     drafts,
		pensums:    pensums,
		normalizer: curriculum.NewNormalizer(),
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Preview parses raw, optionally normalizes it, and validates the result.
// Text that is not JSON fails with MALFORMED_IMPORT. A structurally invalid
// document is reported in the preview without a token.
func (s *ImportService) Preview(ctx context.Context, actor Actor, raw []byte, normalize bool) (*models.ImportPreview, error) {
	doc, err := curriculum.ParseDocument(raw)
	if err != nil {
		s.metrics.RecordImport("preview", OutcomeMalformed)
		return nil, appErrors.WithDetails(appErrors.ErrMalformedImport, "", []string{err.Error()})
	}

	preview := &models.ImportPreview{Normalized: normalize, Errors: []string{}, Warnings: []string{}}

	if normalize {
		normalized := s.normalizer.Normalize(doc)
		if doc, err = curriculum.ToDocument(normalized); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to normalize document")
		}
	}

	structure := curriculum.ValidateDocument(doc)
	if !structure.Valid {
		s.metrics.RecordImport("preview", OutcomeInvalid)
		preview.Errors = structure.Errors
		return preview, nil
	}

	p, err := curriculum.ToPensum(doc)
	if err != nil {
		s.metrics.RecordImport("preview", OutcomeInvalid)
		preview.Errors = []string{err.Error()}
		return preview, nil
	}
	prereqs := curriculum.ValidatePrerequisites(p)
	preview.Warnings = prereqs.Errors

	now := s.now()
	draft := &models.ImportDraft{
		Token:      uuid.NewString(),
		UserID:     actor.UserID,
		Pensum:     *p,
		Normalized: normalize,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.DraftTTL),
	}
	if err := s.drafts.Save(ctx, draft, s.cfg.DraftTTL); err != nil {
		if errors.Is(err, appErrors.ErrUnavailable) {
			return nil, appErrors.FromError(err)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store import draft")
	}

	stats := curriculum.CalculateStats(p, p.Progress)
	preview.Valid = true
	preview.Token = draft.Token
	preview.Pensum = p
	preview.Stats = &stats
	preview.ExpiresAt = &draft.ExpiresAt

	outcome := OutcomeValid
	if !prereqs.Valid {
		outcome = OutcomeWarning
	}
	s.metrics.RecordImport("preview", outcome)
	s.logger.Info("import previewed",
		zap.String("user_id", actor.UserID),
		zap.Bool("normalized", normalize),
		zap.Int("warnings", len(prereqs.Errors)))
	return preview, nil
}

// Confirm persists a previewed draft owned by actor and discards it.
func (s *ImportService) Confirm(ctx context.Context, actor Actor, token string) (*PensumResult, error) {
	draft, err := s.drafts.Get(ctx, token)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			s.metrics.RecordImport("confirm", OutcomeFailure)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "import draft not found or expired")
		}
		if errors.Is(err, appErrors.ErrUnavailable) {
			return nil, appErrors.FromError(err)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import draft")
	}
	if draft.UserID != actor.UserID {
		s.metrics.RecordImport("confirm", OutcomeFailure)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import draft not found or expired")
	}

	doc, err := curriculum.ToDocument(draft.Pensum.Document())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode import draft")
	}

	result, err := s.pensums.Create(ctx, actor, doc)
	if err != nil {
		s.metrics.RecordImport("confirm", OutcomeFailure)
		return nil, err
	}

	if err := s.drafts.Delete(ctx, token); err != nil {
		s.logger.Warn("failed to discard import draft", zap.String("token", token), zap.Error(err))
	}
	s.metrics.RecordImport("confirm", OutcomeSuccess)
	return result, nil
}
