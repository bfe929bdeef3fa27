package curriculum

import (
	"math"

	"github.com/studypath/studypath-api/internal/models"
)

// percentage rounds half up, so 12.5 becomes 13.
func percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(whole)*100 + 0.5))
}

// CalculateStats aggregates progress over the whole curriculum. The
// percentage is weighted by credits, not by subject count. Electives are not
// counted.
func CalculateStats(p *models.Pensum, progress models.Progress) models.ProgressStats {
	var stats models.ProgressStats
	if p == nil {
		return stats
	}

	for _, term := range p.Terms {
		for _, subject := range term.Subjects {
			stats.TotalSubjects++
			stats.TotalCredits += subject.Credits
			if progress.StatusOf(subject.Code) == models.StatusApproved {
				stats.ApprovedSubjects++
				stats.ApprovedCredits += subject.Credits
			}
		}
	}

	stats.ProgressPercentage = percentage(stats.ApprovedCredits, stats.TotalCredits)
	return stats
}

// CalculateTermProgress aggregates progress over a single term, weighted by
// subject count.
func CalculateTermProgress(term models.Term, progress models.Progress) models.TermProgress {
	result := models.TermProgress{Total: len(term.Subjects)}
	for _, subject := range term.Subjects {
		if progress.StatusOf(subject.Code) == models.StatusApproved {
			result.Approved++
		}
	}
	result.Percentage = percentage(result.Approved, result.Total)
	return result
}
