package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/config"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

type AuditReportValidator struct{}

func (v *AuditReportValidator) Validate(req AuditReportRequest) error {
	if req.Title == "" || len(req.Title) > 200 {
		return fmt.Errorf("title is required and must be less than 200 characters")
	}
	if req.DepartmentID == "" {
		return fmt.Errorf("departmentId is required")
	}
	if req.AuditDate == "" {
		return fmt.Errorf("auditDate is required")
	}
	if req.Status != "" && !models.IsValidAuditStatus(req.Status) {
		return fmt.Errorf("invalid status: %s", req.Status)
	}
	return nil
}

func ListAuditReports(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if deptStr := r.URL.Query().Get("department"); deptStr != "" {
		deptID, err := primitive.ObjectIDFromHex(deptStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid department id")
			return
		}
		filter["departmentId"] = deptID
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid year")
			return
		}
		filter["auditDate"] = bson.M{
			"$gte": time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			"$lt":  time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "auditDate", Value: -1}})
	cursor, err := auditReportCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("audit reports Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var reports []models.AuditReport
	if err = cursor.All(ctx, &reports); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode audit reports")
		return
	}

	if reports == nil {
		reports = []models.AuditReport{}
	}

	// attach a public URL so clients never touch storage paths
	type auditReportView struct {
		models.AuditReport `bson:",inline"`
		FileURL            string `json:"fileUrl,omitempty"`
	}
	views := make([]auditReportView, 0, len(reports))
	for _, rep := range reports {
		view := auditReportView{AuditReport: rep}
		if rep.Attachment != nil {
			view.FileURL = fileStore.PublicURL(rep.Attachment.Path)
		}
		views = append(views, view)
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}

type AuditReportRequest struct {
	Title        string `json:"title"`
	DepartmentID string `json:"departmentId"`
	AuditDate    string `json:"auditDate"`
	Status       string `json:"status,omitempty"`
}

func CreateAuditReport(w http.ResponseWriter, r *http.Request) {
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

	var req AuditReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := AuditReportValidator{}
	if err := validator.Validate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	auditDate, err := time.Parse("2006-01-02", req.AuditDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "auditDate: invalid date format, expected YYYY-MM-DD")
		return
	}

	departmentID, err := primitive.ObjectIDFromHex(req.DepartmentID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := departmentCollection.CountDocuments(ctx, bson.M{"_id": departmentID, "organizationId": orgID})
	if err != nil {
		log.Printf("count departments error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if count == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "department not found")
		return
	}

	status := req.Status
	if status == "" {
		status = models.AuditStatusPending
	}

	report := models.AuditReport{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Title:          req.Title,
		DepartmentID:   departmentID,
		AuditDate:      auditDate,
		Status:         status,
		CreatedBy:      userID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if _, err := auditReportCollection.InsertOne(ctx, report); err != nil {
		log.Printf("insert audit report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create audit report")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, report)
}

func UpdateAuditReport(w http.ResponseWriter, r *http.Request) {
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

	var req AuditReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.Status != "" && !models.IsValidAuditStatus(req.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid status: %s", req.Status))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.Title != "" {
		if len(req.Title) > 200 {
			utils.RespondWithError(w, http.StatusBadRequest, "title must be less than 200 characters")
			return
		}
		update["title"] = req.Title
	}
	if req.Status != "" {
		update["status"] = req.Status
	}
	if req.AuditDate != "" {
		auditDate, err := time.Parse("2006-01-02", req.AuditDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "auditDate: invalid date format, expected YYYY-MM-DD")
			return
		}
		update["auditDate"] = auditDate
	}
	if req.DepartmentID != "" {
		departmentID, err := primitive.ObjectIDFromHex(req.DepartmentID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid department id")
			return
		}
		count, err := departmentCollection.CountDocuments(ctx, bson.M{"_id": departmentID, "organizationId": orgID})
		if err != nil {
			log.Printf("count departments error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
			return
		}
		if count == 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "department not found")
			return
		}
		update["departmentId"] = departmentID
	}

	result, err := auditReportCollection.UpdateOne(ctx,
		bson.M{"_id": reportID, "organizationId": orgID},
		bson.M{"$set": update})
	if err != nil {
		log.Printf("update audit report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update audit report")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "audit report not found")
		return
	}

	var report models.AuditReport
	if err := auditReportCollection.FindOne(ctx, bson.M{"_id": reportID}).Decode(&report); err != nil {
		log.Printf("find updated audit report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated audit report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

// UploadAuditReportFile replaces the attachment on a report. The upload is
// multipart form data under the "file" field.
func UploadAuditReportFile(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var report models.AuditReport
	err = auditReportCollection.FindOne(ctx, bson.M{"_id": reportID, "organizationId": orgID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "audit report not found")
			return
		}
		log.Printf("find audit report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	storedPath, written, err := fileStore.Save(header.Filename, file)
	if err != nil {
		log.Printf("store audit report file error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	attachment := models.FileAttachment{
		Path:         storedPath,
		OriginalName: header.Filename,
		Size:         written,
		ContentType:  header.Header.Get("Content-Type"),
	}

	_, err = auditReportCollection.UpdateOne(ctx,
		bson.M{"_id": reportID, "organizationId": orgID},
		bson.M{"$set": bson.M{"attachment": attachment, "updatedAt": time.Now().UTC()}})
	if err != nil {
		log.Printf("attach file to audit report error: %v", err)
		if delErr := fileStore.Delete(storedPath); delErr != nil {
			log.Printf("cleanup of orphaned upload %s failed: %v", storedPath, delErr)
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to attach file")
		return
	}

	// the previous attachment, if any, is now unreferenced
	if report.Attachment != nil && report.Attachment.Path != storedPath {
		if err := fileStore.Delete(report.Attachment.Path); err != nil {
			log.Printf("Failed to remove replaced attachment %s: %v", report.Attachment.Path, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "file uploaded successfully",
		"file":    attachment,
		"fileUrl": fileStore.PublicURL(storedPath),
	})
}

// DownloadAuditReportFile streams the stored attachment with its original
// name in the Content-Disposition header.
func DownloadAuditReportFile(w http.ResponseWriter, r *http.Request) {
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

	var report models.AuditReport
	err = auditReportCollection.FindOne(ctx, bson.M{"_id": reportID, "organizationId": orgID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "audit report not found")
			return
		}
		log.Printf("find audit report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	if report.Attachment == nil {
		utils.RespondWithError(w, http.StatusNotFound, "audit report has no attachment")
		return
	}

	f, err := fileStore.Open(report.Attachment.Path)
	if err != nil {
		log.Printf("open attachment %s error: %v", report.Attachment.Path, err)
		utils.RespondWithError(w, http.StatusNotFound, "attachment file is missing from storage")
		return
	}
	defer f.Close()

	contentType := report.Attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Attachment.OriginalName))
	w.Header().Set("Content-Length", strconv.FormatInt(report.Attachment.Size, 10))
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("stream attachment %s error: %v", report.Attachment.Path, err)
	}
}

func DeleteAuditReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	role, ok := r.Context().Value("userRole").(string)
	if !ok || (role != "superadmin" && role != "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions to delete audit report")
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

	var report models.AuditReport
	err = auditReportCollection.FindOneAndDelete(ctx, bson.M{"_id": reportID, "organizationId": orgID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "audit report not found")
			return
		}
		log.Printf("delete audit report error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete audit report")
		return
	}

	if report.Attachment != nil {
		if err := fileStore.Delete(report.Attachment.Path); err != nil {
			log.Printf("Failed to remove attachment %s: %v", report.Attachment.Path, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "audit report deleted successfully",
		"id":      reportID.Hex(),
	})
}
