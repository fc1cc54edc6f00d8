package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

type ScheduledReportValidator struct{}

func (v *ScheduledReportValidator) Validate(req ScheduledReportRequest) error {
	if req.Name == "" || len(req.Name) > 120 {
		return fmt.Errorf("name is required and must be less than 120 characters")
	}
	switch req.ReportType {
	case models.ReportTypeSummary, models.ReportTypeNonConformances:
	default:
		return fmt.Errorf("invalid report type: %s", req.ReportType)
	}
	switch req.Format {
	case models.ReportFormatPDF, models.ReportFormatXLSX:
	default:
		return fmt.Errorf("invalid format: %s", req.Format)
	}
	switch req.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return fmt.Errorf("invalid frequency: %s", req.Frequency)
	}
	return nil
}

func ListScheduledReports(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := scheduledReportCollection.Find(ctx, bson.M{"organizationId": orgID}, opts)
	if err != nil {
		log.Printf("scheduled reports Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var reports []models.ScheduledReport
	if err = cursor.All(ctx, &reports); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode scheduled reports")
		return
	}

	if reports == nil {
		reports = []models.ScheduledReport{}
	}

	utils.RespondWithJSON(w, http.StatusOK, reports)
}

type ScheduledReportRequest struct {
	Name          string   `json:"name"`
	ReportType    string   `json:"reportType"`
	Format        string   `json:"format"`
	Frequency     string   `json:"frequency"`
	DepartmentIDs []string `json:"departmentIds,omitempty"`
	Enabled       *bool    `json:"enabled,omitempty"`
}

func parseDepartmentIDs(ids []string) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid department id: %s", id)
		}
		out = append(out, oid)
	}
	return out, nil
}

func CreateScheduledReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	userID, _, ok := actorFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	var req ScheduledReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := ScheduledReportValidator{}
	if err := validator.Validate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	departmentIDs, err := parseDepartmentIDs(req.DepartmentIDs)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now().UTC()
	report := models.ScheduledReport{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Name:           req.Name,
		ReportType:     req.ReportType,
		Format:         req.Format,
		Frequency:      req.Frequency,
		DepartmentIDs:  departmentIDs,
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      userID,
	}
	// the first run happens one full period out, not immediately
	report.NextRunAt = report.NextAfter(now)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := scheduledReportCollection.InsertOne(ctx, report); err != nil {
		log.Printf("insert scheduled report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create scheduled report")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, report)
}

func UpdateScheduledReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	vars := mux.Vars(r)
	reportID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}

	var req ScheduledReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != "" {
		if len(req.Name) > 120 {
			utils.RespondWithError(w, http.StatusBadRequest, "name must be less than 120 characters")
			return
		}
		update["name"] = req.Name
	}
	if req.ReportType != "" {
		if req.ReportType != models.ReportTypeSummary && req.ReportType != models.ReportTypeNonConformances {
			utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid report type: %s", req.ReportType))
			return
		}
		update["reportType"] = req.ReportType
	}
	if req.Format != "" {
		if req.Format != models.ReportFormatPDF && req.Format != models.ReportFormatXLSX {
			utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid format: %s", req.Format))
			return
		}
		update["format"] = req.Format
	}
	if req.Frequency != "" {
		switch req.Frequency {
		case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
		default:
			utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid frequency: %s", req.Frequency))
			return
		}
		update["frequency"] = req.Frequency
	}
	if req.DepartmentIDs != nil {
		departmentIDs, err := parseDepartmentIDs(req.DepartmentIDs)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		update["departmentIds"] = departmentIDs
	}
	if req.Enabled != nil {
		update["enabled"] = *req.Enabled
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := scheduledReportCollection.UpdateOne(ctx,
		bson.M{"_id": reportID, "organizationId": orgID},
		bson.M{"$set": update})
	if err != nil {
		log.Printf("update scheduled report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update scheduled report")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "scheduled report not found")
		return
	}

	var report models.ScheduledReport
	if err := scheduledReportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report); err != nil {
		log.Printf("find updated scheduled report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated scheduled report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

func DeleteScheduledReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	vars := mux.Vars(r)
	reportID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid report id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := scheduledReportCollection.DeleteOne(ctx, bson.M{"_id": reportID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete scheduled report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete scheduled report")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "scheduled report not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "scheduled report deleted successfully",
		"id":      reportID.Hex(),
	})
}
