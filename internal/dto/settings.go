package dto

import "github.com/studypath/studypath-api/internal/models"

// UpdateAISettingsRequest partially updates AI preferences. A nil APIKey
// keeps the stored key; an empty string clears it.
type UpdateAISettingsRequest struct {
	APIKey                *string `json:"apiKey" validate:"omitempty,max=256"`
	ModelPreference       *string `json:"modelPreference" validate:"omitempty,max=64"`
	EnableRecommendations *bool   `json:"enableRecommendations"`
}

// AISettingsResponse exposes AI preferences without revealing the key.
type AISettingsResponse struct {
	HasAPIKey             bool   `json:"hasApiKey"`
	APIKeyHint            string `json:"apiKeyHint,omitempty"`
	ModelPreference       string `json:"modelPreference"`
	EnableRecommendations bool   `json:"enableRecommendations"`
}

// UpdateScheduleRequest replaces the weekly schedule.
type UpdateScheduleRequest struct {
	Classes []models.ClassEntry `json:"classes" validate:"max=100,dive"`
}
