package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/models"
	appErrors "github.com/studypath/studypath-api/pkg/errors"
	"github.com/studypath/studypath-api/pkg/export"
)

// ExportFormat selects the rendering of an export.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ParseExportFormat maps a query value onto a format, defaulting to JSON.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ExportFormatJSON):
		return ExportFormatJSON, true
	case string(ExportFormatCSV):
		return ExportFormatCSV, true
	case string(ExportFormatPDF):
		return ExportFormatPDF, true
	}
	return "", false
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type pensumReader interface {
	Get(ctx context.Context, actor Actor, id string) (*models.Pensum, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(report export.Report) ([]byte, error)
}

var reportHeaders = []string{"Término", "Código", "Asignatura", "Créditos", "Prerrequisitos", "Estado", "Disponible"}

var reportWidths = []float64{18, 24, 58, 16, 34, 22, 18}

// ExportService renders curricula for download.
type ExportService struct {
	pensums pensumReader
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(pensums pensumReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{pensums: pensums, csv: csv, pdf: pdf, logger: logger}
}

// Export renders a curriculum visible to actor. JSON yields the import
// document shape; CSV and PDF yield a progress report.
func (s *ExportService) Export(ctx context.Context, actor Actor, id string, format ExportFormat) (*ExportFile, error) {
	p, err := s.pensums.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	base := slugify(p.Career)
	if base == "" {
		base = "pensum"
	}

	switch format {
	case ExportFormatJSON:
		body, err := json.MarshalIndent(p.Document(), "", "  ")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode pensum")
		}
		return &ExportFile{Filename: base + ".json", ContentType: "application/json", Body: body}, nil
	case ExportFormatCSV:
		body, err := s.csv.Render(progressDataset(p))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case ExportFormatPDF:
		body, err := s.pdf.Render(progressReport(p))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}

func progressDataset(p *models.Pensum) export.Dataset {
	data := export.Dataset{Headers: reportHeaders}
	for _, term := range p.Terms {
		for _, subject := range term.Subjects {
			available := "No"
			if curriculum.PrerequisitesMet(subject, p.Progress) {
				available = "Sí"
			}
			data.Rows = append(data.Rows, map[string]string{
				reportHeaders[0]: strconv.Itoa(term.Number),
				reportHeaders[1]: subject.Code,
				reportHeaders[2]: subject.Name,
				reportHeaders[3]: strconv.Itoa(subject.Credits),
				reportHeaders[4]: strings.Join(subject.Prerequisites, "; "),
				reportHeaders[5]: string(p.Progress.StatusOf(subject.Code)),
				reportHeaders[6]: available,
			})
		}
	}
	return data
}

func progressReport(p *models.Pensum) export.Report {
	stats := curriculum.CalculateStats(p, p.Progress)
	summary := []string{
		fmt.Sprintf("Facultad: %s", p.Faculty),
		fmt.Sprintf("Versión: %s", p.Version),
		fmt.Sprintf("Créditos aprobados: %d de %d", stats.ApprovedCredits, stats.TotalCredits),
		fmt.Sprintf("Asignaturas aprobadas: %d de %d", stats.ApprovedSubjects, stats.TotalSubjects),
		fmt.Sprintf("Progreso: %d%%", stats.ProgressPercentage),
	}
	return export.Report{
		Title:   fmt.Sprintf("%s - %s", p.Career, p.Title),
		Summary: summary,
		Table:   progressDataset(p),
		Widths:  reportWidths,
	}
}

var accentFolder = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n")

func slugify(raw string) string {
	var b strings.Builder
	dash := false
	for _, r := range accentFolder.Replace(strings.ToLower(raw)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
