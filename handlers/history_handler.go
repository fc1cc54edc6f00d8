package handlers

import (
	"context"
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

var historyEntityTypes = map[string]bool{
	"nonconformance": true,
	"audit_report":   true,
}

// ListFieldHistory returns the change log for one entity, newest first.
// Each entry carries the typed values plus legacy display strings so the
// old history panel keeps rendering without changes.
func ListFieldHistory(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgFromContext(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "organization id required")
		return
	}

	vars := mux.Vars(r)
	entityType := vars["entityType"]
	if !historyEntityTypes[entityType] {
		utils.RespondWithError(w, http.StatusBadRequest, "unknown entity type")
		return
	}

	entityID, err := primitive.ObjectIDFromHex(vars["entityId"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid entity id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{
		"organizationId": orgID,
		"entityType":     entityType,
		"entityId":       entityID,
	}
	if field := r.URL.Query().Get("field"); field != "" {
		filter["field"] = field
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "changedAt", Value: -1}}).
		SetLimit(500)

	cursor, err := historyCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("history Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var changes []models.FieldChange
	if err = cursor.All(ctx, &changes); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode history")
		return
	}

	type fieldChangeView struct {
		models.FieldChange `bson:",inline"`
		OldDisplay         string `json:"oldDisplay"`
		NewDisplay         string `json:"newDisplay"`
	}
	views := make([]fieldChangeView, 0, len(changes))
	for _, c := range changes {
		views = append(views, fieldChangeView{
			FieldChange: c,
			OldDisplay:  c.OldValue.Display(),
			NewDisplay:  c.NewValue.Display(),
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}
