// models/scheduled_report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReportTypeSummary         = "summary"
	ReportTypeNonConformances = "nonconformances"

	ReportFormatPDF  = "pdf"
	ReportFormatXLSX = "xlsx"

	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// ScheduledReport is a standing order to generate a document on a cadence.
// The scheduler loop picks up enabled entries whose NextRunAt has elapsed.
type ScheduledReport struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID   `bson:"organizationId" json:"organizationId"`
	Name           string               `bson:"name" json:"name"`
	ReportType     string               `bson:"reportType" json:"reportType"` // summary | nonconformances
	Format         string               `bson:"format" json:"format"`         // pdf | xlsx
	Frequency      string               `bson:"frequency" json:"frequency"`   // daily | weekly | monthly
	DepartmentIDs  []primitive.ObjectID `bson:"departmentIds,omitempty" json:"departmentIds,omitempty"`
	Enabled        bool                 `bson:"enabled" json:"enabled"`
	LastRunAt      *time.Time           `bson:"lastRunAt,omitempty" json:"lastRunAt,omitempty"`
	NextRunAt      time.Time            `bson:"nextRunAt" json:"nextRunAt"`
	LastRunPath    string               `bson:"lastRunPath,omitempty" json:"lastRunPath,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
	CreatedBy      primitive.ObjectID   `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
}

// NextAfter computes the run following from, per the report frequency.
func (s *ScheduledReport) NextAfter(from time.Time) time.Time {
	switch s.Frequency {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from.AddDate(0, 0, 1)
	}
}
