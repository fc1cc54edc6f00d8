package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLogValue(t *testing.T) {
	t.Run("nil maps to the null kind", func(t *testing.T) {
		assert.Equal(t, ValueKindNull, LogValue(nil).Kind)
	})

	t.Run("nil time pointer maps to the null kind", func(t *testing.T) {
		var ts *time.Time
		assert.Equal(t, ValueKindNull, LogValue(ts).Kind)
	})

	t.Run("dates are logged day granular", func(t *testing.T) {
		ts := time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)
		lv := LogValue(ts)
		assert.Equal(t, ValueKindString, lv.Kind)
		assert.Equal(t, "2024-05-15", lv.Str)
	})

	t.Run("integers keep a whole number display", func(t *testing.T) {
		assert.Equal(t, "42", LogValue(42).Display())
	})
}

func TestLoggedValueDisplay(t *testing.T) {
	cases := []struct {
		name string
		lv   LoggedValue
		want string
	}{
		{"null renders empty", LoggedValue{Kind: ValueKindNull}, ""},
		{"string passes through", LoggedValue{Kind: ValueKindString, Str: "pending"}, "pending"},
		{"fractional number", LoggedValue{Kind: ValueKindNumber, Num: 2.5}, "2.5"},
		{"bool", LoggedValue{Kind: ValueKindBool, Bool: true}, "true"},
		{"json marshals compact", LoggedValue{Kind: ValueKindJSON, JSON: bson.M{"a": "b"}}, `{"a":"b"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.lv.Display())
		})
	}
}
