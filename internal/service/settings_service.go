package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/dto"
	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserSettings, error)
	UpsertAISettings(ctx context.Context, userID string, ai models.AISettings, updatedAt time.Time) error
	UpsertSchedule(ctx context.Context, userID string, schedule models.Schedule, updatedAt time.Time) error
}

// SettingsService manages per-user AI preferences and class schedules.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
	fallback  string
	now       func() time.Time
}

// NewSettingsService constructs a SettingsService. fallbackKey is used for
// advisor calls when the user has not saved a key.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger, fallbackKey string) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SettingsService{repo: repo, validator: validate, logger: logger, fallback: fallbackKey, now: func() time.Time { return time.Now().UTC() }}
	svc.validator.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		day := fl.Field().String()
		for _, d := range models.Weekdays {
			if d == day {
				return true
			}
		}
		return false
	})
	svc.validator.RegisterStructValidation(func(sl validator.StructLevel) {
		entry := sl.Current().Interface().(models.ClassEntry)
		start, okStart := clockMinutes(entry.StartTime)
		end, okEnd := clockMinutes(entry.EndTime)
		if okStart && okEnd && end <= start {
			sl.ReportError(entry.EndTime, "EndTime", "endTime", "after_start", "")
		}
	}, models.ClassEntry{})
	return svc
}

// GetAISettings returns the user's AI preferences with the key masked.
func (s *SettingsService) GetAISettings(ctx context.Context, userID string) (*dto.AISettingsResponse, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := maskAISettings(settings.AISettings)
	return &resp, nil
}

// UpdateAISettings applies a partial update.
func (s *SettingsService) UpdateAISettings(ctx context.Context, userID string, req dto.UpdateAISettingsRequest) (*dto.AISettingsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ai settings payload")
	}

	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	ai := settings.AISettings
	if req.APIKey != nil {
		ai.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if req.ModelPreference != nil {
		ai.ModelPreference = strings.TrimSpace(*req.ModelPreference)
	}
	if req.EnableRecommendations != nil {
		ai.EnableRecommendations = *req.EnableRecommendations
	}

	if err := s.repo.UpsertAISettings(ctx, userID, ai, s.now()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save ai settings")
	}
	s.logger.Info("ai settings updated", zap.String("user_id", userID), zap.Bool("has_api_key", ai.APIKey != ""))

	resp := maskAISettings(ai)
	return &resp, nil
}

// GetSchedule returns the user's weekly classes.
func (s *SettingsService) GetSchedule(ctx context.Context, userID string) (*models.Schedule, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &settings.Schedule, nil
}

// UpdateSchedule replaces the schedule wholesale.
func (s *SettingsService) UpdateSchedule(ctx context.Context, userID string, req dto.UpdateScheduleRequest) (*models.Schedule, error) {
	for i := range req.Classes {
		c := &req.Classes[i]
		c.SubjectName = strings.TrimSpace(c.SubjectName)
		c.SubjectCode = strings.TrimSpace(c.SubjectCode)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid schedule", validationDetails(err))
	}

	schedule := models.Schedule{Classes: req.Classes}
	if schedule.Classes == nil {
		schedule.Classes = []models.ClassEntry{}
	}
	if err := s.repo.UpsertSchedule(ctx, userID, schedule, s.now()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}
	return &schedule, nil
}

// Credentials resolves the advisor credential for userID.
func (s *SettingsService) Credentials(ctx context.Context, userID string) (AdvisorCredentials, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return AdvisorCredentials{}, err
	}
	creds := AdvisorCredentials{
		APIKey:                settings.AISettings.APIKey,
		Model:                 settings.AISettings.ModelPreference,
		EnableRecommendations: settings.AISettings.EnableRecommendations,
	}
	if creds.APIKey == "" {
		creds.APIKey = s.fallback
	}
	return creds, nil
}

func (s *SettingsService) load(ctx context.Context, userID string) (*models.UserSettings, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.UserSettings{
				UserID:     userID,
				AISettings: models.DefaultAISettings(),
				Schedule:   models.Schedule{Classes: []models.ClassEntry{}},
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

func maskAISettings(ai models.AISettings) dto.AISettingsResponse {
	resp := dto.AISettingsResponse{
		HasAPIKey:             ai.APIKey != "",
		ModelPreference:       ai.ModelPreference,
		EnableRecommendations: ai.EnableRecommendations,
	}
	if n := len(ai.APIKey); n > 8 {
		resp.APIKeyHint = "****" + ai.APIKey[n-4:]
	} else if n > 0 {
		resp.APIKeyHint = "****"
	}
	return resp
}

// clockMinutes converts HH:MM into minutes after midnight.
func clockMinutes(raw string) (int, bool) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return details
}
