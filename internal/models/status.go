package models

import (
	"database/sql/driver"
	"sort"
)

// Status is a subject's completion state for one student.
type Status string

const (
	StatusApproved   Status = "approved"
	StatusInProgress Status = "inProgress"
	StatusPending    Status = "pending"
	StatusFailed     Status = "failed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusApproved, StatusInProgress, StatusPending, StatusFailed}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusApproved, StatusInProgress, StatusPending, StatusFailed:
		return true
	}
	return false
}

// ParseStatus converts raw into a Status, reporting false for unknown values.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.Valid()
}

// Progress maps subject codes to their status. It is persisted as JSONB and
// replaced wholesale on every save.
type Progress map[string]Status

// StatusOf resolves the status for code. Absent or unrecognised entries are
// pending.
func (p Progress) StatusOf(code string) Status {
	if s, ok := p[code]; ok && s.Valid() {
		return s
	}
	return StatusPending
}

// CodesWith returns the sorted codes whose stored status is exactly s.
func (p Progress) CodesWith(s Status) []string {
	codes := make([]string, 0)
	for code, status := range p {
		if status == s {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// Invalid returns the sorted codes mapped to an unknown status.
func (p Progress) Invalid() []string {
	var codes []string
	for code, status := range p {
		if !status.Valid() {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// Value implements driver.Valuer.
func (p Progress) Value() (driver.Value, error) {
	if p == nil {
		p = Progress{}
	}
	return marshalJSONB("progress", map[string]Status(p))
}

// Scan implements sql.Scanner.
func (p *Progress) Scan(value interface{}) error {
	decoded := Progress{}
	if err := scanJSONB("progress", value, &decoded); err != nil {
		return err
	}
	*p = decoded
	return nil
}
