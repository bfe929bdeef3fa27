package models

import "time"

// ImportDraft is a validated import awaiting confirmation.
type ImportDraft struct {
	Token      string    `json:"token"`
	UserID     string    `json:"userId"`
	Pensum     Pensum    `json:"pensum"`
	Normalized bool      `json:"normalized"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ImportPreview is returned by the preview step.
type ImportPreview struct {
	Token      string         `json:"token,omitempty"`
	Valid      bool           `json:"valid"`
	Normalized bool           `json:"normalized"`
	Errors     []string       `json:"errors"`
	Warnings   []string       `json:"warnings"`
	Pensum     *Pensum        `json:"pensum,omitempty"`
	Stats      *ProgressStats `json:"stats,omitempty"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
}
