package curriculum

import (
	"github.com/studypath/studypath-api/internal/models"
)

// PrerequisitesMet reports whether every prerequisite of s is approved.
// Free-text requirements are not exempt here: a requirement such as
// "Aprobar todas las asignaturas" can never be approved and therefore blocks.
// Corequisites are ignored.
func PrerequisitesMet(s models.Subject, progress models.Progress) bool {
	for _, ref := range s.Prerequisites {
		if progress.StatusOf(ref) != models.StatusApproved {
			return false
		}
	}
	return true
}

// AvailableSubjects lists the subjects a student could enrol in next: not yet
// approved or in progress, with all prerequisites approved. Order follows the
// curriculum.
func AvailableSubjects(p *models.Pensum, progress models.Progress) []models.AvailableSubject {
	available := []models.AvailableSubject{}
	if p == nil {
		return available
	}

	for _, term := range p.Terms {
		for _, subject := range term.Subjects {
			switch progress.StatusOf(subject.Code) {
			case models.StatusApproved, models.StatusInProgress:
				continue
			}
			if !PrerequisitesMet(subject, progress) {
				continue
			}
			available = append(available, models.AvailableSubject{
				Subject:  subject,
				Term:     term.Number,
				TermName: term.Name,
			})
		}
	}
	return available
}

// Decorate resolves every subject's status and prerequisite badge, and every
// term's progress, for rendering.
func Decorate(p *models.Pensum, progress models.Progress) []models.TermOverview {
	terms := []models.TermOverview{}
	if p == nil {
		return terms
	}

	for _, term := range p.Terms {
		overview := models.TermOverview{
			Number:   term.Number,
			Name:     term.Name,
			Progress: CalculateTermProgress(term, progress),
			Subjects: make([]models.SubjectOverview, 0, len(term.Subjects)),
		}
		for _, subject := range term.Subjects {
			overview.Subjects = append(overview.Subjects, models.SubjectOverview{
				Subject:          subject,
				Status:           progress.StatusOf(subject.Code),
				PrerequisitesMet: PrerequisitesMet(subject, progress),
			})
		}
		terms = append(terms, overview)
	}
	return terms
}

// Overview bundles stats, per-term views and available subjects.
func Overview(p *models.Pensum, progress models.Progress) models.PensumOverview {
	overview := models.PensumOverview{
		Stats:     CalculateStats(p, progress),
		Terms:     Decorate(p, progress),
		Available: AvailableSubjects(p, progress),
	}
	if p != nil {
		overview.PensumID = p.ID
		overview.Career = p.Career
		overview.Title = p.Title
		overview.Faculty = p.Faculty
	}
	return overview
}
