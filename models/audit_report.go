// models/audit_report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuditStatusPending    = "pending"
	AuditStatusInProgress = "in_progress"
	AuditStatusCompleted  = "completed"
)

func IsValidAuditStatus(s string) bool {
	switch s {
	case AuditStatusPending, AuditStatusInProgress, AuditStatusCompleted:
		return true
	}
	return false
}

// FileAttachment describes a document stored in the file store. Path is
// the sanitized storage path, OriginalName the name the user uploaded.
type FileAttachment struct {
	Path         string `bson:"path" json:"path"`
	OriginalName string `bson:"originalName" json:"originalName"`
	Size         int64  `bson:"size" json:"size"`
	ContentType  string `bson:"contentType" json:"contentType"`
}

type AuditReport struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Title          string             `bson:"title" json:"title"`
	DepartmentID   primitive.ObjectID `bson:"departmentId" json:"departmentId"`
	AuditDate      time.Time          `bson:"auditDate" json:"auditDate"`
	Status         string             `bson:"status" json:"status"` // pending | in_progress | completed
	Attachment     *FileAttachment    `bson:"attachment,omitempty" json:"attachment,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	CreatedBy      primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
}
