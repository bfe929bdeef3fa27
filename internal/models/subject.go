package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
)

// Subject is one course of a curriculum, identified by a code unique within it.
type Subject struct {
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Credits       int        `json:"credits"`
	TheoryHours   *int       `json:"theoryHours,omitempty"`
	PracticeHours *int       `json:"practiceHours,omitempty"`
	LabHours      *int       `json:"labHours,omitempty"`
	Prerequisites Requisites `json:"prerequisites,omitempty"`
	Corequisites  Requisites `json:"corequisites,omitempty"`
	Description   string     `json:"description,omitempty"`
	Type          string     `json:"type,omitempty"`
}

// Requisites is an ordered list of subject codes or free-text requirements
// such as "Aprobar todas las asignaturas del 4to cuatrimestre".
type Requisites []string

// UnmarshalJSON accepts only arrays. Non-string entries are dropped and any
// non-array value decodes to an empty list.
func (r *Requisites) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*r = nil
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	out := make(Requisites, 0, len(raw))
	for _, entry := range raw {
		if code, ok := entry.(string); ok {
			out = append(out, code)
		}
	}
	*r = out
	return nil
}

// Subjects is a JSONB-backed list of subjects, used for electives.
type Subjects []Subject

// Value implements driver.Valuer.
func (s Subjects) Value() (driver.Value, error) {
	if s == nil {
		s = Subjects{}
	}
	return marshalJSONB("subjects", []Subject(s))
}

// Scan implements sql.Scanner.
func (s *Subjects) Scan(value interface{}) error {
	var decoded Subjects
	if err := scanJSONB("subjects", value, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}
