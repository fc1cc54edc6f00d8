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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

type DepartmentValidator struct{}

func (v *DepartmentValidator) Validate(name, groupType string) error {
	if name == "" || len(name) > 120 {
		return fmt.Errorf("name is required and must be less than 120 characters")
	}
	if groupType != "" && groupType != models.GroupCorporate && groupType != models.GroupRegional {
		return fmt.Errorf("invalid group type: %s", groupType)
	}
	return nil
}

func ListDepartments(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"organizationId": orgID}
	if groupType := r.URL.Query().Get("groupType"); groupType != "" {
		filter["groupType"] = groupType
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := departmentCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("departments Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var departments []models.Department
	if err = cursor.All(ctx, &departments); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode departments")
		return
	}

	if departments == nil {
		departments = []models.Department{}
	}

	utils.RespondWithJSON(w, http.StatusOK, departments)
}

func GetDepartment(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	vars := mux.Vars(r)
	departmentID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var department models.Department
	err = departmentCollection.FindOne(ctx, bson.M{"_id": departmentID, "organizationId": orgID}).Decode(&department)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "department not found")
			return
		}
		log.Printf("find department error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, department)
}

type DepartmentRequest struct {
	Name      string `json:"name"`
	GroupType string `json:"groupType,omitempty"`
}

// CreateDepartment seeds reference data, so it stays admin-only.
func CreateDepartment(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	role, ok := r.Context().Value("userRole").(string)
	if !ok || (role != "superadmin" && role != "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions to create department")
		return
	}

	var req DepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := DepartmentValidator{}
	if err := validator.Validate(req.Name, req.GroupType); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	groupType := req.GroupType
	if groupType == "" {
		groupType = models.GroupCorporate
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// names are unique per organization
	count, err := departmentCollection.CountDocuments(ctx, bson.M{"organizationId": orgID, "name": req.Name})
	if err != nil {
		log.Printf("count departments error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "department already exists")
		return
	}

	department := models.Department{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Name:           req.Name,
		GroupType:      groupType,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := departmentCollection.InsertOne(ctx, department); err != nil {
		log.Printf("insert department error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create department")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, department)
}

func UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	vars := mux.Vars(r)
	departmentID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id format")
		return
	}

	var req DepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	validator := DepartmentValidator{}
	if err := validator.Validate(req.Name, req.GroupType); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"name": req.Name}
	if req.GroupType != "" {
		update["groupType"] = req.GroupType
	}

	result, err := departmentCollection.UpdateOne(ctx,
		bson.M{"_id": departmentID, "organizationId": orgID},
		bson.M{"$set": update})
	if err != nil {
		log.Printf("update department error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update department")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "department not found")
		return
	}

	// keep the denormalized name on records in sync
	if _, err := nonConformanceCollection.UpdateMany(ctx,
		bson.M{"departmentId": departmentID, "organizationId": orgID},
		bson.M{"$set": bson.M{"departmentName": req.Name}}); err != nil {
		log.Printf("Failed to propagate department rename: %v", err)
	}

	var department models.Department
	if err := departmentCollection.FindOne(ctx, bson.M{"_id": departmentID}).Decode(&department); err != nil {
		log.Printf("find updated department error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to fetch updated department")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, department)
}

func DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	role, ok := r.Context().Value("userRole").(string)
	if !ok || (role != "superadmin" && role != "admin") {
		utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions to delete department")
		return
	}

	vars := mux.Vars(r)
	departmentID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid department id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// refuse to delete a department that still has records
	count, err := nonConformanceCollection.CountDocuments(ctx, bson.M{"departmentId": departmentID, "organizationId": orgID})
	if err != nil {
		log.Printf("count records for department error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "department has associated records and cannot be deleted")
		return
	}

	result, err := departmentCollection.DeleteOne(ctx, bson.M{"_id": departmentID, "organizationId": orgID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "department not found")
			return
		}
		log.Printf("delete department error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete department")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "department not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "department deleted successfully",
		"id":      departmentID.Hex(),
	})
}
