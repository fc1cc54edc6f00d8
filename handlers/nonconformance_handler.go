package handlers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/websocket"
)

// NonConformanceValidator rejects bad payloads before anything reaches
// the database.
type NonConformanceValidator struct{}

func (v *NonConformanceValidator) ValidateCreate(req CreateNonConformanceRequest) error {
	if req.Title == "" || len(req.Title) > 200 {
		return fmt.Errorf("title is required and must be less than 200 characters")
	}
	if req.OccurrenceDate == "" {
		return fmt.Errorf("occurrenceDate is required")
	}
	if req.DepartmentID == "" {
		return fmt.Errorf("departmentId is required")
	}
	if req.Status != "" && !models.IsValidStatus(req.Status) {
		return fmt.Errorf("invalid status: %s", req.Status)
	}
	return nil
}

func (v *NonConformanceValidator) ValidateUpdate(req UpdateNonConformanceRequest) error {
	if req.Title != "" && len(req.Title) > 200 {
		return fmt.Errorf("title must be less than 200 characters")
	}
	if req.Status != "" && !models.IsValidStatus(req.Status) {
		return fmt.Errorf("invalid status: %s", req.Status)
	}
	return nil
}

// Helper function to parse date pointers safely
func parseDatePointer(dateStr *string) (*time.Time, error) {
	if dateStr == nil || *dateStr == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date format, expected YYYY-MM-DD")
	}
	return &t, nil
}

// Helper function to generate a human-readable record code
func generateCode() string {
	timestamp := time.Now().Format("20060102")
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(10000))
	return fmt.Sprintf("NC-%s-%04d", timestamp, randomNum.Int64())
}

func orgFromContext(r *http.Request) (primitive.ObjectID, bool) {
	orgIDStr, ok := r.Context().Value("orgID").(string)
	if !ok || orgIDStr == "" {
		return primitive.NilObjectID, false
	}
	orgID, err := primitive.ObjectIDFromHex(orgIDStr)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return orgID, true
}

func actorFromContext(r *http.Request) (primitive.ObjectID, string, bool) {
	userIDStr, ok := r.Context().Value("userID").(string)
	if !ok || userIDStr == "" {
		return primitive.NilObjectID, "", false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return primitive.NilObjectID, "", false
	}
	name, _ := r.Context().Value("userName").(string)
	return userID, name, true
}

// buildListFilter translates the query string into the mongo filter: the
// same filter surface the old remote query builder exposed.
func buildListFilter(orgID primitive.ObjectID, query map[string][]string) (bson.M, error) {
	get := func(key string) string {
		if vals, ok := query[key]; ok && len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	filter := bson.M{"organizationId": orgID}

	// status is comma-joined multi-value
	if status := get("status"); status != "" {
		parts := strings.Split(status, ",")
		statuses := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				statuses = append(statuses, p)
			}
		}
		if len(statuses) == 1 {
			filter["status"] = statuses[0]
		} else if len(statuses) > 1 {
			filter["status"] = bson.M{"$in": statuses}
		}
	}

	if departments := get("departments"); departments != "" {
		ids := []primitive.ObjectID{}
		for _, part := range strings.Split(departments, ",") {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid department id: %s", part)
			}
			ids = append(ids, id)
		}
		filter["departmentId"] = bson.M{"$in": ids}
	}

	if responsible := get("responsible"); responsible != "" {
		filter["responsibleName"] = bson.M{"$regex": responsible, "$options": "i"}
	}

	if search := get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
			{"code": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	// occurrence range: inclusive day bounds, ISO yyyy-MM-dd
	occurrence := bson.M{}
	if from := get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, fmt.Errorf("from: invalid date format, expected YYYY-MM-DD")
		}
		occurrence["$gte"] = t
	}
	if to := get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, fmt.Errorf("to: invalid date format, expected YYYY-MM-DD")
		}
		occurrence["$lte"] = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
	}
	if len(occurrence) > 0 {
		filter["occurrenceDate"] = occurrence
	}

	return filter, nil
}

func ListNonConformances(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	filter, err := buildListFilter(orgID, r.URL.Query())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
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

	if recs == nil {
		recs = []models.NonConformance{}
	}

	utils.RespondWithJSON(w, http.StatusOK, recs)
}

type CreateNonConformanceRequest struct {
	Code            string  `json:"code,omitempty"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Status          string  `json:"status,omitempty"`
	OccurrenceDate  string  `json:"occurrenceDate"`
	ResponseDate    *string `json:"responseDate,omitempty"`
	DepartmentID    string  `json:"departmentId"`
	ResponsibleName string  `json:"responsibleName,omitempty"`
	AuditorName     string  `json:"auditorName,omitempty"`
}

func CreateNonConformance(w http.ResponseWriter, r *http.Request) {
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

	var req CreateNonConformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := NonConformanceValidator{}
	if err := validator.ValidateCreate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	occurrenceDate, err := time.Parse("2006-01-02", req.OccurrenceDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "occurrenceDate: invalid date format, expected YYYY-MM-DD")
		return
	}

	responseDate, err := parseDatePointer(req.ResponseDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("responseDate: %v", err))
		return
	}

	departmentID, err := primitive.ObjectIDFromHex(req.DepartmentID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var department models.Department
	err = departmentCollection.FindOne(ctx, bson.M{"_id": departmentID, "organizationId": orgID}).Decode(&department)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusBadRequest, "department not found")
			return
		}
		log.Printf("find department error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}

	code := req.Code
	if code == "" {
		code = generateCode()
	}

	rec := models.NonConformance{
		ID:              primitive.NewObjectID(),
		OrganizationID:  orgID,
		Code:            code,
		Title:           req.Title,
		Description:     req.Description,
		Status:          status,
		OccurrenceDate:  occurrenceDate,
		ResponseDate:    responseDate,
		DepartmentID:    departmentID,
		DepartmentName:  department.Name,
		ResponsibleName: req.ResponsibleName,
		AuditorName:     req.AuditorName,
		CreatedBy:       userID,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	if _, err := nonConformanceCollection.InsertOne(ctx, rec); err != nil {
		log.Printf("insert nonconformance error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create record")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, rec)
}

func GetNonConformance(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
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

	utils.RespondWithJSON(w, http.StatusOK, rec)
}

type UpdateNonConformanceRequest struct {
	Title                         string  `json:"title,omitempty"`
	Description                   *string `json:"description,omitempty"`
	Status                        string  `json:"status,omitempty"`
	OccurrenceDate                *string `json:"occurrenceDate,omitempty"`
	ResponseDate                  *string `json:"responseDate,omitempty"`
	CompletionDate                *string `json:"completionDate,omitempty"`
	EffectivenessVerificationDate *string `json:"effectivenessVerificationDate,omitempty"`
	DepartmentID                  string  `json:"departmentId,omitempty"`
	ResponsibleName               *string `json:"responsibleName,omitempty"`
	AuditorName                   *string `json:"auditorName,omitempty"`
}

func UpdateNonConformance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	userID, userName, ok := actorFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	vars := mux.Vars(r)
	recID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid record id format")
		return
	}

	var req UpdateNonConformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := NonConformanceValidator{}
	if err := validator.ValidateUpdate(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// fetch current, apply update, verify, fetch again
	var existing models.NonConformance
	err = nonConformanceCollection.FindOne(ctx, bson.M{"_id": recID, "organizationId": orgID}).Decode(&existing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "record not found")
			return
		}
		log.Printf("find nonconformance error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	update := bson.M{}
	changes := []models.FieldChange{}

	record := func(field string, oldVal, newVal interface{}) {
		changes = append(changes, models.FieldChange{
			ID:             primitive.NewObjectID(),
			OrganizationID: orgID,
			EntityType:     "nonconformance",
			EntityID:       recID,
			Field:          field,
			OldValue:       models.LogValue(oldVal),
			NewValue:       models.LogValue(newVal),
			ChangedAt:      time.Now().UTC(),
			ActorID:        userID,
			ActorName:      userName,
		})
	}

	if req.Title != "" && req.Title != existing.Title {
		update["title"] = req.Title
		record("title", existing.Title, req.Title)
	}
	if req.Description != nil && *req.Description != existing.Description {
		update["description"] = *req.Description
		record("description", existing.Description, *req.Description)
	}
	if req.Status != "" && req.Status != existing.Status {
		update["status"] = req.Status
		record("status", existing.Status, req.Status)
	}
	if req.ResponsibleName != nil && *req.ResponsibleName != existing.ResponsibleName {
		update["responsibleName"] = *req.ResponsibleName
		record("responsibleName", existing.ResponsibleName, *req.ResponsibleName)
	}
	if req.AuditorName != nil && *req.AuditorName != existing.AuditorName {
		update["auditorName"] = *req.AuditorName
		record("auditorName", existing.AuditorName, *req.AuditorName)
	}

	if req.OccurrenceDate != nil {
		parsed, err := parseDatePointer(req.OccurrenceDate)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("occurrenceDate: %v", err))
			return
		}
		if parsed != nil && !parsed.Equal(existing.OccurrenceDate) {
			update["occurrenceDate"] = *parsed
			record("occurrenceDate", existing.OccurrenceDate, *parsed)
		}
	}

	dateField := func(field string, reqVal *string, current *time.Time) error {
		if reqVal == nil {
			return nil
		}
		parsed, err := parseDatePointer(reqVal)
		if err != nil {
			return fmt.Errorf("%s: %v", field, err)
		}
		same := (parsed == nil && current == nil) ||
			(parsed != nil && current != nil && parsed.Equal(*current))
		if same {
			return nil
		}
		update[field] = parsed
		record(field, current, parsed)
		return nil
	}

	if err := dateField("responseDate", req.ResponseDate, existing.ResponseDate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := dateField("completionDate", req.CompletionDate, existing.CompletionDate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := dateField("effectivenessVerificationDate", req.EffectivenessVerificationDate, existing.EffectivenessVerificationDate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.DepartmentID != "" {
		departmentID, err := primitive.ObjectIDFromHex(req.DepartmentID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid department id")
			return
		}
		if departmentID != existing.DepartmentID {
			var department models.Department
			err = departmentCollection.FindOne(ctx, bson.M{"_id": departmentID, "organizationId": orgID}).Decode(&department)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "department not found")
				return
			}
			update["departmentId"] = departmentID
			update["departmentName"] = department.Name
			record("department", existing.DepartmentName, department.Name)
		}
	}

	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	update["updatedAt"] = time.Now().UTC()
	update["updatedBy"] = userID

	result, err := nonConformanceCollection.UpdateOne(ctx, bson.M{"_id": recID, "organizationId": orgID}, bson.M{"$set": update})
	if err != nil {
		log.Printf("update nonconformance error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update record")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "record not found")
		return
	}

	var updated models.NonConformance
	err = nonConformanceCollection.FindOne(ctx, bson.M{"_id": recID}).Decode(&updated)
	if err != nil {
		log.Printf("find updated nonconformance error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated record")
		return
	}

	// Post-update verification. A status mismatch gets exactly one
	// repair attempt; anything else is logged and left alone.
	if req.Status != "" && updated.Status != req.Status {
		log.Printf("status verification mismatch on %s: wanted %q, stored %q; repairing",
			recID.Hex(), req.Status, updated.Status)
		_, repairErr := nonConformanceCollection.UpdateOne(ctx,
			bson.M{"_id": recID, "organizationId": orgID},
			bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now().UTC()}})
		if repairErr != nil {
			log.Printf("status repair failed on %s: %v", recID.Hex(), repairErr)
		} else {
			updated.Status = req.Status
		}
	}

	if len(changes) > 0 {
		docs := make([]interface{}, 0, len(changes))
		for i := range changes {
			docs = append(docs, changes[i])
		}
		if _, err := historyCollection.InsertMany(ctx, docs); err != nil {
			log.Printf("Failed to append field history: %v", err)
		}
		for i := range changes {
			websocket.BroadcastFieldChange(&changes[i])
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func DeleteNonConformance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	role, ok := r.Context().Value("userRole").(string)
	if !ok || (role != "superadmin" && role != "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions to delete record")
		return
	}

	vars := mux.Vars(r)
	recID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid record id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// hard delete, no tombstone; history entries stay for the viewer
	result, err := nonConformanceCollection.DeleteOne(ctx, bson.M{"_id": recID, "organizationId": orgID})
	if err != nil {
		log.Printf("delete nonconformance error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "record not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "record deleted successfully",
		"id":      recID.Hex(),
	})
}
