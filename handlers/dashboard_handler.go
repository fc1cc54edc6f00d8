package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/metrics"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

// DashboardResponse bundles everything the dashboard page renders in one
// round trip.
type DashboardResponse struct {
	KPIs               metrics.KPISet            `json:"kpis"`
	StatusDistribution []metrics.StatusBucket    `json:"statusDistribution"`
	Departments        []metrics.DepartmentCount `json:"departments"`
	MonthlyTrend       []metrics.MonthBucket     `json:"monthlyTrend"`
	OpenAuditReports   int64                     `json:"openAuditReports"`
	DepartmentTotal    int64                     `json:"departmentTotal"`
	GeneratedAt        time.Time                 `json:"generatedAt"`
}

// GetDashboard loads the record set once and reduces it in memory; the
// side counters run concurrently against their own collections.
func GetDashboard(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		recs       []models.NonConformance
		openAudits int64
		deptTotal  int64
		loadErr    error
	)

	setErr := func(err error) {
		mu.Lock()
		if loadErr == nil {
			loadErr = err
		}
		mu.Unlock()
	}

	wg.Add(3)

	go func() {
		defer wg.Done()
		cursor, err := nonConformanceCollection.Find(ctx, filter)
		if err != nil {
			setErr(err)
			return
		}
		defer cursor.Close(ctx)
		var loaded []models.NonConformance
		if err := cursor.All(ctx, &loaded); err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		recs = loaded
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		count, err := auditReportCollection.CountDocuments(ctx, bson.M{
			"organizationId": orgID,
			"status":         bson.M{"$ne": models.AuditStatusCompleted},
		})
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		openAudits = count
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		count, err := departmentCollection.CountDocuments(ctx, bson.M{"organizationId": orgID})
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		deptTotal = count
		mu.Unlock()
	}()

	wg.Wait()

	if loadErr != nil {
		log.Printf("dashboard load error: %v", loadErr)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	now := time.Now().UTC()
	resp := DashboardResponse{
		KPIs:               metrics.KPIs(recs, now),
		StatusDistribution: metrics.StatusDistribution(recs, now),
		Departments:        metrics.DepartmentDistribution(recs),
		MonthlyTrend:       metrics.MonthlyTrend(recs, now),
		OpenAuditReports:   openAudits,
		DepartmentTotal:    deptTotal,
		GeneratedAt:        now,
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
