package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/export"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/metrics"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func summaryContentType(format string) string {
	if format == models.ReportFormatXLSX {
		return xlsxContentType
	}
	return pdfContentType
}

func writeDocument(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("stream document %s error: %v", filename, err)
	}
}

// ExportNonConformance renders one record as PDF or XLSX, selected by the
// format query parameter.
func ExportNonConformance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	vars := mux.Vars(r)
	recID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid record id format")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = models.ReportFormatPDF
	}
	if format != models.ReportFormatPDF && format != models.ReportFormatXLSX {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format: %s", format))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var rec models.NonConformance
	err = nonConformanceCollection.FindOne(ctx, bson.M{"_id": recID, "organizationId": orgID}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "record not found")
			return
		}
		log.Printf("find nonconformance error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	now := time.Now()
	base := rec.Code
	if base == "" {
		base = "registro"
	}

	switch format {
	case models.ReportFormatPDF:
		data, err := export.NonConformancePDF(rec)
		if err != nil {
			log.Printf("render pdf error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to render document")
			return
		}
		writeDocument(w, export.Filename(base, now, "pdf"), pdfContentType, data)
	case models.ReportFormatXLSX:
		data, err := export.NonConformancesXLSX([]models.NonConformance{rec})
		if err != nil {
			log.Printf("render xlsx error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to render document")
			return
		}
		writeDocument(w, export.Filename(base, now, "xlsx"), xlsxContentType, data)
	}
}

// ExportSummary renders the aggregated summary report over the filtered
// record set, in PDF or XLSX.
func ExportSummary(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = models.ReportFormatPDF
	}
	if format != models.ReportFormatPDF && format != models.ReportFormatXLSX {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format: %s", format))
		return
	}

	filter, err := buildListFilter(orgID, r.URL.Query())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurrenceDate", Value: -1}})
	cursor, err := nonConformanceCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("nonconformances Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var recs []models.NonConformance
	if err = cursor.All(ctx, &recs); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode records")
		return
	}

	now := time.Now().UTC()
	data, err := renderSummary(recs, format, now)
	if err != nil {
		log.Printf("render summary error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to render document")
		return
	}

	writeDocument(w, export.Filename(models.ReportTypeSummary, now, format), summaryContentType(format), data)
}

// renderSummary reduces the records and renders them in the requested
// format.
func renderSummary(recs []models.NonConformance, format string, now time.Time) ([]byte, error) {
	kpis := metrics.KPIs(recs, now)
	statuses := metrics.StatusDistribution(recs, now)
	departments := metrics.DepartmentDistribution(recs)
	trend := metrics.MonthlyTrend(recs, now)

	if format == models.ReportFormatXLSX {
		return export.SummaryXLSX(kpis, statuses, departments, trend)
	}
	return export.SummaryPDF(kpis, statuses, departments, trend)
}
