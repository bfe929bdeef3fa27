package models

// ProgressStats aggregates completion over a whole curriculum. The percentage
// is credit-weighted.
type ProgressStats struct {
	ApprovedCredits    int `json:"approvedCredits"`
	TotalCredits       int `json:"totalCredits"`
	ApprovedSubjects   int `json:"approvedSubjects"`
	TotalSubjects      int `json:"totalSubjects"`
	ProgressPercentage int `json:"progressPercentage"`
}

// TermProgress aggregates completion over one term. The percentage is
// weighted by subject count, not credits.
type TermProgress struct {
	Approved   int `json:"approved"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// AvailableSubject is a subject the student can enrol in next.
type AvailableSubject struct {
	Subject
	Term     int    `json:"term"`
	TermName string `json:"termName"`
}

// SubjectOverview decorates a subject with its resolved status.
type SubjectOverview struct {
	Subject
	Status           Status `json:"status"`
	PrerequisitesMet bool   `json:"prerequisitesMet"`
}

// TermOverview is one term of the tracking view.
type TermOverview struct {
	Number   int               `json:"number"`
	Name     string            `json:"name"`
	Progress TermProgress      `json:"progress"`
	Subjects []SubjectOverview `json:"subjects"`
}

// PensumOverview is the full tracking view of a curriculum for its owner.
type PensumOverview struct {
	PensumID  string             `json:"pensumId"`
	Career    string             `json:"career"`
	Title     string             `json:"title"`
	Faculty   string             `json:"faculty"`
	Stats     ProgressStats      `json:"stats"`
	Terms     []TermOverview     `json:"terms"`
	Available []AvailableSubject `json:"available"`
}
