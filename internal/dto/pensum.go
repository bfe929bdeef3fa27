package dto

import (
	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/models"
)

// UpdateProgressRequest replaces the status map of a curriculum.
type UpdateProgressRequest struct {
	Progress models.Progress `json:"progress"`
}

// ValidationReport is returned by the dry-run validation endpoint.
type ValidationReport struct {
	Structure     curriculum.ValidationResult `json:"structure"`
	Prerequisites curriculum.ValidationResult `json:"prerequisites"`
}

// PensumMeta accompanies stored curricula in response meta.
type PensumMeta struct {
	Warnings []string `json:"warnings"`
}
