// models/department.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	GroupCorporate = "corporate"
	GroupRegional  = "regional"
)

// Department is read-only reference data.
type Department struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	Name           string             `bson:"name" json:"name"`
	GroupType      string             `bson:"groupType" json:"groupType"` // corporate | regional
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
