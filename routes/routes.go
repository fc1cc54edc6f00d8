package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/config"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/handlers"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/middleware"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

// Route grouping constants
const (
	PathAPI    = "/api"
	PathHealth = "/health"
	PathFiles  = "/files/"
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// AUTHENTICATION ROUTES (Public - No auth required)
	// ====================
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/logout", handlers.Logout).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/validate", handlers.ValidateToken).Methods(MethodsGetOnly...)

	// ====================
	// STATIC FILES (uploaded attachments, generated reports)
	// ====================
	r.PathPrefix(PathFiles).Handler(
		http.StripPrefix(PathFiles, http.FileServer(http.Dir(config.UploadDir))))

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	// ====================
	// USER / SESSION
	// ====================
	apiRouter.HandleFunc("/user/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/users", handlers.ListUsers).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/auth/change-password", handlers.ChangePassword).Methods(MethodsPostOnly...)

	// ====================
	// NON-CONFORMANCES
	// ====================
	apiRouter.HandleFunc("/nonconformances", handlers.ListNonConformances).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/nonconformances", handlers.CreateNonConformance).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/nonconformances/{id}", handlers.GetNonConformance).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/nonconformances/{id}", handlers.UpdateNonConformance).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/nonconformances/{id}", handlers.DeleteNonConformance).Methods(MethodsDeleteOnly...)
	apiRouter.HandleFunc("/nonconformances/{id}/export", handlers.ExportNonConformance).Methods(MethodsGetOnly...)

	// ====================
	// DEPARTMENTS
	// ====================
	apiRouter.HandleFunc("/departments", handlers.ListDepartments).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/departments", handlers.CreateDepartment).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/departments/{id}", handlers.GetDepartment).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/departments/{id}", handlers.UpdateDepartment).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/departments/{id}", handlers.DeleteDepartment).Methods(MethodsDeleteOnly...)

	// ====================
	// AUDIT REPORTS
	// ====================
	apiRouter.HandleFunc("/audit-reports", handlers.ListAuditReports).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/audit-reports", handlers.CreateAuditReport).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/audit-reports/{id}", handlers.UpdateAuditReport).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/audit-reports/{id}", handlers.DeleteAuditReport).Methods(MethodsDeleteOnly...)
	apiRouter.HandleFunc("/audit-reports/{id}/file", handlers.UploadAuditReportFile).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/audit-reports/{id}/file", handlers.DownloadAuditReportFile).Methods(MethodsGetOnly...)

	// ====================
	// FIELD HISTORY
	// ====================
	apiRouter.HandleFunc("/history/{entityType}/{entityId}", handlers.ListFieldHistory).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/history/stream", websocket.HandleStream).Methods(MethodsGetOnly...)

	// ====================
	// DASHBOARD & REPORTS
	// ====================
	apiRouter.HandleFunc("/dashboard", handlers.GetDashboard).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/reports/summary/export", handlers.ExportSummary).Methods(MethodsGetOnly...)

	// ====================
	// SCHEDULED REPORTS
	// ====================
	apiRouter.HandleFunc("/scheduled-reports", handlers.ListScheduledReports).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/scheduled-reports", handlers.CreateScheduledReport).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/scheduled-reports/{id}", handlers.UpdateScheduledReport).Methods(MethodsPutOnly...)
	apiRouter.HandleFunc("/scheduled-reports/{id}", handlers.DeleteScheduledReport).Methods(MethodsDeleteOnly...)
}
