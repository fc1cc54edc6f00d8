// Package export serializes records and dashboard summaries into the PDF
// and XLSX documents the download buttons produce. Section ordering and
// the field label table are fixed here and shared by both writers, so a
// spreadsheet re-read always yields the same translated headers.
package export

import (
	"fmt"
	"time"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

// Field identifiers in the fixed export order: identification, detail
// fields, dates, free text.
var FieldOrder = []string{
	"code",
	"title",
	"status",
	"department",
	"responsibleName",
	"auditorName",
	"occurrenceDate",
	"responseDate",
	"completionDate",
	"effectivenessVerificationDate",
	"description",
}

// Labels translates domain vocabulary into the display strings the
// documents carry.
var Labels = map[string]string{
	"code":                          "Código",
	"title":                         "Título",
	"status":                        "Status",
	"department":                    "Departamento",
	"responsibleName":               "Responsável",
	"auditorName":                   "Auditor",
	"occurrenceDate":                "Data de Ocorrência",
	"responseDate":                  "Data de Resposta",
	"completionDate":                "Data de Conclusão",
	"effectivenessVerificationDate": "Data de Verificação de Eficácia",
	"description":                   "Descrição",
}

var statusLabels = map[string]string{
	models.StatusPending:    "Pendente",
	models.StatusInProgress: "Em andamento",
	models.StatusResolved:   "Resolvida",
	models.StatusClosed:     "Encerrada",
}

// StatusLabel translates a lifecycle status for display, falling back to
// the raw value for anything unknown.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

const dateLayout = "02/01/2006"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

// FieldValue renders one record field as the string the documents print.
func FieldValue(rec models.NonConformance, field string) string {
	switch field {
	case "code":
		return rec.Code
	case "title":
		return rec.Title
	case "status":
		return StatusLabel(rec.Status)
	case "department":
		return rec.DepartmentName
	case "responsibleName":
		return rec.ResponsibleName
	case "auditorName":
		return rec.AuditorName
	case "occurrenceDate":
		return formatDate(rec.OccurrenceDate)
	case "responseDate":
		return formatDatePtr(rec.ResponseDate)
	case "completionDate":
		return formatDatePtr(rec.CompletionDate)
	case "effectivenessVerificationDate":
		return formatDatePtr(rec.EffectivenessVerificationDate)
	case "description":
		return rec.Description
	}
	return ""
}

// Filename builds the download name contract: {base}_{yyyyMMdd}.{ext}.
func Filename(base string, now time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", base, now.Format("20060102"), ext)
}
