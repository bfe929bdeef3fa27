package curriculum

import (
	"fmt"
	"strings"

	"github.com/studypath/studypath-api/internal/models"
)

// Free-text requirements ("Aprobar todas las asignaturas del 4to
// cuatrimestre") are the only exemptions from reference checking.
const (
	exemptPrefix    = "Aprobar"
	exemptSubstring = "cuatrimestre"
)

// IsExemptRequisite reports whether ref is a free-text requirement rather
// than a subject code.
func IsExemptRequisite(ref string) bool {
	return strings.HasPrefix(ref, exemptPrefix) || strings.Contains(ref, exemptSubstring)
}

// ValidatePrerequisites reports every prerequisite and corequisite that does
// not resolve to a subject code of p (terms or electives). The result is
// advisory; callers may persist a curriculum that fails it.
func ValidatePrerequisites(p *models.Pensum) ValidationResult {
	if p == nil {
		return newResult(nil)
	}

	codes := make(map[string]struct{})
	for _, term := range p.Terms {
		for _, subject := range term.Subjects {
			codes[subject.Code] = struct{}{}
		}
	}
	for _, subject := range p.Electives {
		codes[subject.Code] = struct{}{}
	}

	var errs []string
	for _, term := range p.Terms {
		for _, subject := range term.Subjects {
			errs = append(errs, danglingRefs("Prerequisite", subject.Code, subject.Prerequisites, codes)...)
			errs = append(errs, danglingRefs("Corequisite", subject.Code, subject.Corequisites, codes)...)
		}
	}
	return newResult(errs)
}

func danglingRefs(kind, subjectCode string, refs models.Requisites, codes map[string]struct{}) []string {
	var errs []string
	for _, ref := range refs {
		if _, ok := codes[ref]; ok || IsExemptRequisite(ref) {
			continue
		}
		errs = append(errs, fmt.Sprintf("%s %q for subject %q does not exist in the pensum", kind, ref, subjectCode))
	}
	return errs
}
