// models/nonconformance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle states. Pending and in-progress are active; resolved and
// closed are terminal.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func IsTerminalStatus(s string) bool {
	return s == StatusResolved || s == StatusClosed
}

type NonConformance struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Code           string             `bson:"code,omitempty" json:"code,omitempty"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Status         string             `bson:"status" json:"status"`

	// OccurrenceDate is when the issue arose and is always set.
	// ResponseDate is the committed remediation deadline; the two dates
	// after it are post-remediation milestones.
	OccurrenceDate                time.Time  `bson:"occurrenceDate" json:"occurrenceDate"`
	ResponseDate                  *time.Time `bson:"responseDate,omitempty" json:"responseDate,omitempty"`
	CompletionDate                *time.Time `bson:"completionDate,omitempty" json:"completionDate,omitempty"`
	EffectivenessVerificationDate *time.Time `bson:"effectivenessVerificationDate,omitempty" json:"effectivenessVerificationDate,omitempty"`

	DepartmentID   primitive.ObjectID `bson:"departmentId" json:"departmentId"`
	DepartmentName string             `bson:"departmentName,omitempty" json:"departmentName,omitempty"`

	ResponsibleName string `bson:"responsibleName,omitempty" json:"responsibleName,omitempty"`
	AuditorName     string `bson:"auditorName,omitempty" json:"auditorName,omitempty"`

	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}
