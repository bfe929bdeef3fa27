package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Report is a titled document with summary lines above a table.
type Report struct {
	Title   string
	Summary []string
	Table   Dataset
	// Widths optionally sets column widths in millimetres; columns share
	// the page evenly when empty.
	Widths []float64
}

// PDFExporter renders reports into an A4 PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const pageWidth = 190.0

// Render creates the PDF document. Text is translated from UTF-8 to the
// core font code page so accented characters survive.
func (e *PDFExporter) Render(report Report) ([]byte, error) {
	data := report.Table
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	widths := report.Widths
	if len(widths) != len(data.Headers) {
		widths = make([]float64, len(data.Headers))
		for i := range widths {
			widths[i] = pageWidth / float64(len(data.Headers))
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.MultiCell(0, 8, tr(report.Title), "", "C", false)
		pdf.Ln(3)
	}

	if len(report.Summary) > 0 {
		pdf.SetFont("Arial", "", 10)
		for _, line := range report.Summary {
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 7, tr(row[h]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
