package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studypath/studypath-api/internal/models"
)

// SettingsRepository stores one settings row per user.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings of userID, or sql.ErrNoRows when none were saved.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	const query = `SELECT user_id, ai_settings, schedule, updated_at FROM user_settings WHERE user_id = $1 LIMIT 1`
	var settings models.UserSettings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return &settings, nil
}

// UpsertAISettings replaces the AI settings of userID.
func (r *SettingsRepository) UpsertAISettings(ctx context.Context, userID string, ai models.AISettings, updatedAt time.Time) error {
	const query = `INSERT INTO user_settings (user_id, ai_settings, schedule, updated_at) VALUES ($1, $2, '{"classes":[]}', $3)
ON CONFLICT (user_id) DO UPDATE SET ai_settings = EXCLUDED.ai_settings, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, ai, updatedAt); err != nil {
		return fmt.Errorf("upsert ai settings: %w", err)
	}
	return nil
}

// UpsertSchedule replaces the class schedule of userID. A first save seeds
// the default AI settings; existing AI settings are left untouched.
func (r *SettingsRepository) UpsertSchedule(ctx context.Context, userID string, schedule models.Schedule, updatedAt time.Time) error {
	const query = `INSERT INTO user_settings (user_id, ai_settings, schedule, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET schedule = EXCLUDED.schedule, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, models.DefaultAISettings(), schedule, updatedAt); err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}
