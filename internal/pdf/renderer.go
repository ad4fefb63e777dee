package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Field is one labelled value on the rendered form.
type Field struct {
	Label string
	Value string
}

// Document describes a fully approved request ready for printing.
type Document struct {
	Title     string
	Subtitle  string
	Reference string
	Fields    []Field
	Decision  []Field
	IssuedAt  time.Time
}

// Renderer produces printable A4 documents for approved requests.
type Renderer struct {
	institution string
}

// NewRenderer constructs a renderer stamped with the institution name.
func NewRenderer(institution string) *Renderer {
	return &Renderer{institution: institution}
}

// Render lays out the document and returns the PDF bytes.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 18, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, r.institution, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, doc.Title, "", 1, "C", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	if doc.Reference != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, "Reference: "+doc.Reference, "", 1, "R", false, 0, "")
		pdf.Ln(2)
	}

	r.fieldTable(pdf, doc.Fields)

	if len(doc.Decision) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Review Outcome", "B", 1, "L", false, 0, "")
		pdf.Ln(2)
		r.fieldTable(pdf, doc.Decision)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	issued := doc.IssuedAt
	if issued.IsZero() {
		issued = time.Now().UTC()
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on %s", issued.Format("2 January 2006 15:04 MST")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fieldTable(pdf *gofpdf.Fpdf, fields []Field) {
	const labelWidth = 55.0
	for _, field := range fields {
		if field.Value == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelWidth, 7, field.Label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 7, field.Value, "", "L", false)
	}
}
