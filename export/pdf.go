// export/pdf.go
package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/metrics"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	lineHeight   = 6.0
	contentWidth = pageWidth - 2*marginLeft
)

type pdfDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDF(title string) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	// Pagination is done by measuring block heights, not by the
	// library's automatic breaks.
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	doc := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentWidth, 10, doc.tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	return doc
}

// ensureSpace inserts a page break when the next block would overflow
// the remaining page height.
func (d *pdfDoc) ensureSpace(height float64) {
	if d.pdf.GetY()+height > pageHeight-marginBottom {
		d.pdf.AddPage()
	}
}

func (d *pdfDoc) sectionHeader(name string) {
	d.ensureSpace(2 * lineHeight)
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.CellFormat(contentWidth, lineHeight+2, d.tr(name), "B", 1, "L", false, 0, "")
	d.pdf.Ln(1)
}

func (d *pdfDoc) labelValue(label, value string) {
	d.ensureSpace(lineHeight)
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(60, lineHeight, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(contentWidth-60, lineHeight, d.tr(value), "", 1, "L", false, 0, "")
}

// textBlock renders wrapped free text. Each wrapped line is measured
// against the remaining page height so the block breaks cleanly across
// pages.
func (d *pdfDoc) textBlock(text string) {
	d.pdf.SetFont("Helvetica", "", 10)
	// SplitText expects UTF-8 input; translate to cp1252 per line at
	// render time instead.
	lines := d.pdf.SplitText(text, contentWidth)
	for _, line := range lines {
		d.ensureSpace(5)
		d.pdf.CellFormat(contentWidth, 5, d.tr(line), "", 1, "L", false, 0, "")
	}
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// NonConformancePDF renders a single record in the fixed section order:
// identification, detail fields, dates, free text.
func NonConformancePDF(rec models.NonConformance) ([]byte, error) {
	title := rec.Code
	if title == "" {
		title = rec.Title
	}
	doc := newPDF("Não Conformidade " + title)

	sections := []struct {
		name   string
		fields []string
	}{
		{"Identificação", []string{"code", "title", "status"}},
		{"Detalhes", []string{"department", "responsibleName", "auditorName"}},
		{"Datas", []string{"occurrenceDate", "responseDate", "completionDate", "effectivenessVerificationDate"}},
	}

	for _, section := range sections {
		doc.sectionHeader(section.name)
		for _, field := range section.fields {
			doc.labelValue(Labels[field], FieldValue(rec, field))
		}
		doc.pdf.Ln(2)
	}

	doc.sectionHeader(Labels["description"])
	doc.textBlock(rec.Description)

	return doc.bytes()
}

// NonConformanceListPDF renders a record listing, one compact block per
// record.
func NonConformanceListPDF(recs []models.NonConformance) ([]byte, error) {
	doc := newPDF("Não Conformidades")

	for _, rec := range recs {
		header := rec.Code
		if header == "" {
			header = rec.Title
		}
		doc.sectionHeader(header)
		for _, field := range FieldOrder {
			if field == "code" || field == "description" {
				continue
			}
			doc.labelValue(Labels[field], FieldValue(rec, field))
		}
		doc.pdf.Ln(2)
	}

	return doc.bytes()
}

// SummaryPDF renders the dashboard aggregates as a printable report.
func SummaryPDF(kpis metrics.KPISet, statuses []metrics.StatusBucket, departments []metrics.DepartmentCount, trend []metrics.MonthBucket) ([]byte, error) {
	doc := newPDF("Relatório de Não Conformidades")

	doc.sectionHeader("Indicadores")
	doc.labelValue("Não conformidades", fmt.Sprintf("%d", kpis.Total))
	doc.labelValue("Urgentes", fmt.Sprintf("%d", kpis.Urgent))
	doc.labelValue("Críticas", fmt.Sprintf("%d", kpis.Critical))
	doc.labelValue("Prazo próximo", fmt.Sprintf("%d", kpis.Approaching))
	doc.labelValue("Vencidas", fmt.Sprintf("%d", kpis.Overdue))
	doc.pdf.Ln(2)

	doc.sectionHeader("Distribuição por status")
	for _, b := range statuses {
		doc.labelValue(b.Label, fmt.Sprintf("%d", b.Count))
	}
	doc.pdf.Ln(2)

	doc.sectionHeader("Distribuição por departamento")
	for _, dep := range departments {
		doc.labelValue(dep.Name, fmt.Sprintf("%d", dep.Total))
	}
	doc.pdf.Ln(2)

	doc.sectionHeader("Tendência mensal")
	for _, m := range trend {
		doc.labelValue(m.Label, fmt.Sprintf("%d", m.Total))
	}

	return doc.bytes()
}
