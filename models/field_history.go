// models/field_history.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value kinds carried by a FieldChange entry. The legacy store
// stringified everything; keeping the kind tag avoids lossy round-trips
// while Display() still reproduces the old string form.
const (
	ValueKindString = "string"
	ValueKindNumber = "number"
	ValueKindBool   = "bool"
	ValueKindJSON   = "json"
	ValueKindNull   = "null"
)

// LoggedValue is a tagged union over the value types a tracked field can
// hold. Exactly one payload field is meaningful, selected by Kind.
type LoggedValue struct {
	Kind string  `bson:"kind" json:"kind"`
	Str  string  `bson:"str,omitempty" json:"str,omitempty"`
	Num  float64 `bson:"num,omitempty" json:"num,omitempty"`
	Bool bool    `bson:"bool,omitempty" json:"bool,omitempty"`
	JSON bson.M  `bson:"json,omitempty" json:"json,omitempty"`
}

// LogValue wraps an arbitrary field value into a LoggedValue.
func LogValue(v interface{}) LoggedValue {
	switch val := v.(type) {
	case nil:
		return LoggedValue{Kind: ValueKindNull}
	case string:
		return LoggedValue{Kind: ValueKindString, Str: val}
	case bool:
		return LoggedValue{Kind: ValueKindBool, Bool: val}
	case int:
		return LoggedValue{Kind: ValueKindNumber, Num: float64(val)}
	case int64:
		return LoggedValue{Kind: ValueKindNumber, Num: float64(val)}
	case float64:
		return LoggedValue{Kind: ValueKindNumber, Num: val}
	case time.Time:
		return LoggedValue{Kind: ValueKindString, Str: val.Format("2006-01-02")}
	case *time.Time:
		if val == nil {
			return LoggedValue{Kind: ValueKindNull}
		}
		return LoggedValue{Kind: ValueKindString, Str: val.Format("2006-01-02")}
	case bson.M:
		return LoggedValue{Kind: ValueKindJSON, JSON: val}
	default:
		return LoggedValue{Kind: ValueKindString, Str: fmt.Sprintf("%v", val)}
	}
}

// Display renders the value the way the legacy history viewer expects:
// everything as text.
func (lv LoggedValue) Display() string {
	switch lv.Kind {
	case ValueKindNull:
		return ""
	case ValueKindString:
		return lv.Str
	case ValueKindNumber:
		if lv.Num == float64(int64(lv.Num)) {
			return fmt.Sprintf("%d", int64(lv.Num))
		}
		return fmt.Sprintf("%g", lv.Num)
	case ValueKindBool:
		return fmt.Sprintf("%t", lv.Bool)
	case ValueKindJSON:
		b, err := json.Marshal(lv.JSON)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return lv.Str
}

// FieldChange is one append-only history entry: a single field of a
// single entity changing value at a point in time.
type FieldChange struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organizationId" json:"organizationId"`
	EntityType     string             `bson:"entityType" json:"entityType"` // nonconformance | audit_report
	EntityID       primitive.ObjectID `bson:"entityId" json:"entityId"`
	Field          string             `bson:"field" json:"field"`
	OldValue       LoggedValue        `bson:"oldValue" json:"oldValue"`
	NewValue       LoggedValue        `bson:"newValue" json:"newValue"`
	ChangedAt      time.Time          `bson:"changedAt" json:"changedAt"`
	ActorID        primitive.ObjectID `bson:"actorId,omitempty" json:"actorId,omitempty"`
	ActorName      string             `bson:"actorName,omitempty" json:"actorName,omitempty"`
}
