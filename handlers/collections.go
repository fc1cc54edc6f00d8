// handlers/collections.go
package handlers

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/config"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/database"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/storage"
)

var (
	orgCollection             *mongo.Collection
	userCollection            *mongo.Collection
	departmentCollection      *mongo.Collection
	nonConformanceCollection  *mongo.Collection
	auditReportCollection     *mongo.Collection
	historyCollection         *mongo.Collection
	scheduledReportCollection *mongo.Collection

	fileStore *storage.Store
)

func InitCollections() {
	db := database.Client.Database(config.DatabaseName)
	orgCollection = db.Collection("organizations")
	userCollection = db.Collection("users")
	departmentCollection = db.Collection("departments")
	nonConformanceCollection = db.Collection("nonconformances")
	auditReportCollection = db.Collection("audit_reports")
	historyCollection = db.Collection("field_history")
	scheduledReportCollection = db.Collection("scheduled_reports")
}

func InitFileStore(store *storage.Store) {
	fileStore = store
}
