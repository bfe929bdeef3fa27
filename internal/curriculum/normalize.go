package curriculum

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studypath/studypath-api/internal/models"
)

const (
	unknownProgram = "Unknown Program"
	unknownDegree  = "Unknown Degree"
	unknownFaculty = "Unknown Faculty"
	unknownSubject = "Unknown Subject"
)

// Normalizer maps loosely-shaped curriculum documents onto the standard
// shape. The conversion is lossy: only career, title, faculty, version and
// terms survive.
type Normalizer struct {
	Now     func() time.Time
	NewCode func() string
}

// NewNormalizer returns a Normalizer using the wall clock and random
// placeholder codes.
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now, NewCode: randomSubjectCode}
}

var defaultNormalizer = NewNormalizer()

// Normalize converts doc with the default Normalizer.
func Normalize(doc interface{}) *models.Pensum {
	return defaultNormalizer.Normalize(doc)
}

func randomSubjectCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SUBJ-" + id[:9]
}

// Normalize never fails; missing values fall back to placeholders.
func (n *Normalizer) Normalize(doc interface{}) *models.Pensum {
	src := object(doc)

	p := &models.Pensum{
		Career:  firstString(src, unknownProgram, "career", "program", "name"),
		Title:   firstString(src, unknownDegree, "title", "degree", "career"),
		Faculty: firstString(src, unknownFaculty, "faculty", "department", "school"),
		Version: firstString(src, n.now().Format("2006-01-02"), "version"),
		Terms:   models.Terms{},
	}

	if raw, ok := field(src, "terms"); ok {
		if terms, isArray := array(raw); isArray {
			for i, t := range terms {
				p.Terms = append(p.Terms, n.normalizeTerm(i, object(t)))
			}
		}
	}
	return p
}

func (n *Normalizer) normalizeTerm(index int, src map[string]interface{}) models.Term {
	term := models.Term{
		Number:   index + 1,
		Name:     firstString(src, fmt.Sprintf("Term %d", index+1), "name"),
		Subjects: []models.Subject{},
	}
	if raw, ok := field(src, "number"); ok {
		if number, ok := toInt(raw); ok {
			term.Number = number
		}
	}

	if raw, ok := field(src, "subjects"); ok {
		if subjects, isArray := array(raw); isArray {
			for _, s := range subjects {
				term.Subjects = append(term.Subjects, n.normalizeSubject(object(s)))
			}
		}
	}
	return term
}

func (n *Normalizer) normalizeSubject(src map[string]interface{}) models.Subject {
	subject := models.Subject{
		Code:          firstString(src, "", "code", "id"),
		Name:          firstString(src, unknownSubject, "name", "title"),
		Prerequisites: requisites(src["prerequisites"]),
		Corequisites:  requisites(src["corequisites"]),
	}
	if subject.Code == "" {
		subject.Code = n.newCode()
	}
	for _, key := range []string{"credits", "creditHours"} {
		if raw, ok := field(src, key); ok {
			if credits, ok := toInt(raw); ok {
				subject.Credits = credits
			}
			break
		}
	}
	return subject
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) newCode() string {
	if n.NewCode == nil {
		return randomSubjectCode()
	}
	return n.NewCode()
}

// firstString returns the first truthy value among keys, rendered as text.
func firstString(src map[string]interface{}, fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := field(src, key); ok {
			return display(v, true)
		}
	}
	return fallback
}

func requisites(v interface{}) models.Requisites {
	out := models.Requisites{}
	list, ok := array(v)
	if !ok {
		return out
	}
	for _, entry := range list {
		if code, ok := entry.(string); ok {
			out = append(out, code)
		}
	}
	return out
}
