package models

import (
	"database/sql/driver"
	"time"
)

// Weekdays are the accepted ClassEntry day names, Monday first.
var Weekdays = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// AISettings holds the user's generative-text preferences.
type AISettings struct {
	APIKey                string `json:"apiKey,omitempty"`
	ModelPreference       string `json:"modelPreference,omitempty"`
	EnableRecommendations bool   `json:"enableRecommendations"`
}

// DefaultAISettings applies to users who never saved AI settings.
func DefaultAISettings() AISettings {
	return AISettings{EnableRecommendations: true}
}

// Value implements driver.Valuer.
func (s AISettings) Value() (driver.Value, error) {
	return marshalJSONB("ai settings", s)
}

// Scan implements sql.Scanner.
func (s *AISettings) Scan(value interface{}) error {
	decoded := AISettings{}
	if err := scanJSONB("ai settings", value, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// ClassEntry is one weekly class slot.
type ClassEntry struct {
	SubjectCode string `json:"subjectCode" validate:"max=32"`
	SubjectName string `json:"subjectName" validate:"required,max=160"`
	Day         string `json:"day" validate:"required,weekday"`
	StartTime   string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string `json:"endTime" validate:"required,datetime=15:04"`
	Location    string `json:"location,omitempty" validate:"max=120"`
	Professor   string `json:"professor,omitempty" validate:"max=120"`
}

// Schedule is the user's weekly class timetable.
type Schedule struct {
	Classes []ClassEntry `json:"classes" validate:"dive"`
}

// Value implements driver.Valuer.
func (s Schedule) Value() (driver.Value, error) {
	if s.Classes == nil {
		s.Classes = []ClassEntry{}
	}
	return marshalJSONB("schedule", s)
}

// Scan implements sql.Scanner.
func (s *Schedule) Scan(value interface{}) error {
	decoded := Schedule{}
	if err := scanJSONB("schedule", value, &decoded); err != nil {
		return err
	}
	if decoded.Classes == nil {
		decoded.Classes = []ClassEntry{}
	}
	*s = decoded
	return nil
}

// UserSettings is the per-user settings document.
type UserSettings struct {
	UserID     string     `db:"user_id" json:"userId"`
	AISettings AISettings `db:"ai_settings" json:"aiSettings"`
	Schedule   Schedule   `db:"schedule" json:"schedule"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}
