package curriculum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypath/studypath-api/internal/models"
)

func fixedNormalizer() *Normalizer {
	n := 0
	return &Normalizer{
		Now: func() time.Time { return time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC) },
		NewCode: func() string {
			n++
			return "SUBJ-GEN" + string(rune('0'+n))
		},
	}
}

func TestNormalizeAliases(t *testing.T) {
	p := fixedNormalizer().Normalize(mustParse(t, `{"program": "X", "degree": "Y", "department": "Z"}`))

	assert.Equal(t, "X", p.Career)
	assert.Equal(t, "Y", p.Title)
	assert.Equal(t, "Z", p.Faculty)
	assert.Equal(t, "2024-03-09", p.Version)
	assert.NotNil(t, p.Terms)
	assert.Empty(t, p.Terms)
}

func TestNormalizeFallbacks(t *testing.T) {
	for _, doc := range []interface{}{nil, "text", 12.0, []interface{}{1.0}, map[string]interface{}{"terms": "nope"}} {
		p := fixedNormalizer().Normalize(doc)
		require.NotNil(t, p)
		assert.Equal(t, "Unknown Program", p.Career)
		assert.Equal(t, "Unknown Degree", p.Title)
		assert.Equal(t, "Unknown Faculty", p.Faculty)
		assert.Empty(t, p.Terms)
	}

	p := fixedNormalizer().Normalize(mustParse(t, `{"name": "Medicina", "school": "Salud", "version": "2.1"}`))
	assert.Equal(t, "Medicina", p.Career)
	assert.Equal(t, "Unknown Degree", p.Title)
	assert.Equal(t, "Salud", p.Faculty)
	assert.Equal(t, "2.1", p.Version)
}

func TestNormalizeTermsAndSubjects(t *testing.T) {
	doc := mustParse(t, `{
		"career": "C",
		"terms": [
			{"subjects": [
				{"id": "A-1", "title": "Álgebra", "creditHours": 4, "prerequisites": "none"},
				{"name": "Física", "credits": "3", "corequisites": ["A-1", 7]},
				{}
			]},
			{"number": 5, "name": "Quinto", "subjects": "bad"}
		]
	}`)

	p := fixedNormalizer().Normalize(doc)

	assert.Equal(t, "C", p.Title)
	require.Len(t, p.Terms, 2)

	first := p.Terms[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "Term 1", first.Name)
	require.Len(t, first.Subjects, 3)
	assert.Equal(t, models.Subject{
		Code:          "A-1",
		Name:          "Álgebra",
		Credits:       4,
		Prerequisites: models.Requisites{},
		Corequisites:  models.Requisites{},
	}, first.Subjects[0])
	assert.Equal(t, "SUBJ-GEN1", first.Subjects[1].Code)
	assert.Equal(t, 3, first.Subjects[1].Credits)
	assert.Equal(t, models.Requisites{"A-1"}, first.Subjects[1].Corequisites)
	assert.Equal(t, "SUBJ-GEN2", first.Subjects[2].Code)
	assert.Equal(t, "Unknown Subject", first.Subjects[2].Name)
	assert.Equal(t, 0, first.Subjects[2].Credits)

	second := p.Terms[1]
	assert.Equal(t, 5, second.Number)
	assert.Equal(t, "Quinto", second.Name)
	assert.NotNil(t, second.Subjects)
	assert.Empty(t, second.Subjects)
}

func TestNormalizedOutputRevalidates(t *testing.T) {
	p := Normalize(mustParse(t, `{"program": "X", "terms": [{"subjects": [{"title": "A"}]}]}`))

	doc, err := ToDocument(p)
	require.NoError(t, err)
	assert.True(t, ValidateDocument(doc).Valid)
	assert.Regexp(t, `^SUBJ-[0-9a-f]{9}$`, p.Terms[0].Subjects[0].Code)
}

func TestNewEmptyPensum(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	p, err := NewEmptyPensum(" Derecho ", "Licenciatura", "Ciencias Jurídicas", now)
	require.NoError(t, err)
	assert.Equal(t, "Derecho", p.Career)
	assert.Equal(t, "2025-01-02", p.Version)
	assert.Empty(t, p.Terms)

	_, err = NewEmptyPensum("Derecho", "", "F", now)
	assert.ErrorIs(t, err, ErrMissingBasicInfo)
}

func TestTemplates(t *testing.T) {
	term := TermTemplate(3)
	assert.Equal(t, 3, term.Number)
	assert.Equal(t, "Term 3", term.Name)
	assert.NotNil(t, term.Subjects)

	s := SubjectTemplate()
	assert.Equal(t, SubjectTypeCore, s.Type)
	require.NotNil(t, s.LabHours)
	assert.Equal(t, 0, *s.LabHours)

	p := uniformPensum(2, 2, 3)
	progress := DefaultProgress(p)
	assert.Len(t, progress, 4)
	assert.Equal(t, models.StatusPending, progress["S202"])
}
