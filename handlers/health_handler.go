package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/database"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

// HealthCheck reports process liveness and database reachability.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK

	if err := database.Client.Ping(ctx, readpref.Primary()); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, code, map[string]interface{}{
		"status":   status,
		"database": dbStatus,
		"time":     time.Now().UTC(),
	})
}
