package curriculum

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studypath/studypath-api/internal/models"
)

// ErrMissingBasicInfo is returned when a new curriculum lacks career, title
// or faculty.
var ErrMissingBasicInfo = errors.New("career, title and faculty are required")

// SubjectTypeCore is the type assigned to template subjects.
const SubjectTypeCore = "Core"

// NewEmptyPensum starts a curriculum with no terms, versioned by date.
func NewEmptyPensum(career, title, faculty string, now time.Time) (*models.Pensum, error) {
	career, title, faculty = strings.TrimSpace(career), strings.TrimSpace(title), strings.TrimSpace(faculty)
	if career == "" || title == "" || faculty == "" {
		return nil, ErrMissingBasicInfo
	}
	return &models.Pensum{
		Career:  career,
		Title:   title,
		Faculty: faculty,
		Version: now.Format("2006-01-02"),
		Terms:   models.Terms{},
	}, nil
}

// SubjectTemplate is a blank subject for the creation wizard.
func SubjectTemplate() models.Subject {
	return models.Subject{
		TheoryHours:   intPtr(0),
		PracticeHours: intPtr(0),
		LabHours:      intPtr(0),
		Prerequisites: models.Requisites{},
		Corequisites:  models.Requisites{},
		Type:          SubjectTypeCore,
	}
}

// TermTemplate is an empty term numbered n.
func TermTemplate(n int) models.Term {
	return models.Term{
		Number:   n,
		Name:     fmt.Sprintf("Term %d", n),
		Subjects: []models.Subject{},
		Credits:  intPtr(0),
	}
}

// DefaultProgress maps every subject of p to pending.
func DefaultProgress(p *models.Pensum) models.Progress {
	progress := models.Progress{}
	if p == nil {
		return progress
	}
	for _, subject := range p.AllSubjects() {
		progress[subject.Code] = models.StatusPending
	}
	return progress
}

func intPtr(v int) *int {
	return &v
}
