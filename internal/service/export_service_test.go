package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
	"github.com/studypath/studypath-api/pkg/export"
)

func newExportServiceForTest(pensums ...*models.Pensum) *ExportService {
	repo := newMockPensumRepo(pensums...)
	return NewExportService(NewPensumService(repo, nil, zap.NewNop()), zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
}

func TestParseExportFormat(t *testing.T) {
	cases := map[string]ExportFormat{"": ExportFormatJSON, "JSON": ExportFormatJSON, " csv ": ExportFormatCSV, "pdf": ExportFormatPDF}
	for raw, want := range cases {
		got, ok := ParseExportFormat(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseExportFormat("xlsx")
	assert.False(t, ok)
}

func TestExportServiceJSONDocument(t *testing.T) {
	svc := newExportServiceForTest(samplePensum("p-1", owner.UserID, false))

	file, err := svc.Export(context.Background(), owner, "p-1", ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "ingenieria-de-sistemas.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(file.Body, &doc))
	assert.Equal(t, "Ingeniería de Sistemas", doc["career"])
	assert.NotContains(t, doc, "id")
	assert.NotContains(t, doc, "userId")
	assert.NotContains(t, doc, "createdAt")
	assert.Contains(t, doc, "progress")
}

func TestExportServiceCSVReport(t *testing.T) {
	svc := newExportServiceForTest(samplePensum("p-1", owner.UserID, false))

	file, err := svc.Export(context.Background(), owner, "p-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "ingenieria-de-sistemas.csv", file.Filename)

	body := bytes.TrimPrefix(file.Body, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, reportHeaders, records[0])
	assert.Equal(t, []string{"1", "MAT101", "Cálculo I", "4", "", "approved", "Sí"}, records[1])
	assert.Equal(t, []string{"2", "MAT201", "Cálculo II", "4", "MAT101", "pending", "Sí"}, records[3])
	assert.Equal(t, []string{"2", "PRG201", "Programación II", "3", "PRG101; FIS999", "pending", "No"}, records[4])
}

func TestExportServicePDFReport(t *testing.T) {
	svc := newExportServiceForTest(samplePensum("p-1", owner.UserID, false))

	file, err := svc.Export(context.Background(), owner, "p-1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceHidesPrivateCurricula(t *testing.T) {
	svc := newExportServiceForTest(samplePensum("p-1", owner.UserID, false))

	_, err := svc.Export(context.Background(), stranger, "p-1", ExportFormatJSON)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ingenieria-en-computacion", slugify("  Ingeniería en Computación! "))
	assert.Equal(t, "diseno-2024", slugify("Diseño / 2024"))
	assert.Empty(t, slugify("¿?"))
}
