package models

import "time"

// Pensum is a university curriculum owned by one user.
type Pensum struct {
	ID          string     `db:"id" json:"id,omitempty"`
	Career      string     `db:"career" json:"career"`
	Title       string     `db:"title" json:"title"`
	Faculty     string     `db:"faculty" json:"faculty"`
	Version     string     `db:"version" json:"version,omitempty"`
	Description string     `db:"description" json:"description,omitempty"`
	University  string     `db:"university" json:"university,omitempty"`
	Terms       Terms      `db:"terms" json:"terms"`
	Electives   Subjects   `db:"electives" json:"electives,omitempty"`
	Progress    Progress   `db:"progress" json:"progress,omitempty"`
	IsPublic    bool       `db:"is_public" json:"isPublic"`
	UserID      string     `db:"user_id" json:"userId,omitempty"`
	UserName    string     `db:"user_name" json:"userName,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

// AllSubjects returns every subject across all terms in display order.
func (p *Pensum) AllSubjects() []Subject {
	if p == nil {
		return nil
	}
	var out []Subject
	for _, term := range p.Terms {
		out = append(out, term.Subjects...)
	}
	return out
}

// PensumDocument is the import/export file shape: a curriculum without
// identifiers, ownership or timestamps.
type PensumDocument struct {
	Career      string   `json:"career"`
	Title       string   `json:"title"`
	Faculty     string   `json:"faculty"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	University  string   `json:"university,omitempty"`
	Terms       Terms    `json:"terms"`
	Electives   Subjects `json:"electives,omitempty"`
	Progress    Progress `json:"progress,omitempty"`
	IsPublic    bool     `json:"isPublic,omitempty"`
}

// Document strips persistence metadata from p.
func (p *Pensum) Document() PensumDocument {
	terms := p.Terms
	if terms == nil {
		terms = Terms{}
	}
	return PensumDocument{
		Career:      p.Career,
		Title:       p.Title,
		Faculty:     p.Faculty,
		Version:     p.Version,
		Description: p.Description,
		University:  p.University,
		Terms:       terms,
		Electives:   p.Electives,
		Progress:    p.Progress,
		IsPublic:    p.IsPublic,
	}
}

// PensumFilter captures listing and search criteria. VisibleTo matches
// public curricula plus those owned by the given user.
type PensumFilter struct {
	UserID     string
	VisibleTo  string
	Search     string
	PublicOnly bool
	Page       int
	PageSize   int
}

// PensumSummary is the list projection shown on the dashboard.
type PensumSummary struct {
	ID        string        `json:"id"`
	Career    string        `json:"career"`
	Title     string        `json:"title"`
	Faculty   string        `json:"faculty"`
	Version   string        `json:"version,omitempty"`
	IsPublic  bool          `json:"isPublic"`
	UserName  string        `json:"userName,omitempty"`
	Stats     ProgressStats `json:"stats"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
