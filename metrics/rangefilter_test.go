package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

func TestInOccurrenceRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	rec := func(occ time.Time) models.NonConformance {
		return models.NonConformance{OccurrenceDate: occ}
	}

	tests := []struct {
		name string
		rec  models.NonConformance
		from *time.Time
		to   *time.Time
		want bool
	}{
		{"inside window", rec(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)), &from, &to, true},
		{"last second of upper day included", rec(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)), &from, &to, true},
		{"first instant past window excluded", rec(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)), &from, &to, false},
		{"before lower bound excluded", rec(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)), &from, &to, false},
		{"no lower bound", rec(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)), nil, &to, true},
		{"no upper bound", rec(time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)), &from, nil, true},
		{"no bounds at all", rec(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), nil, nil, true},
		{"missing occurrence date always fails", models.NonConformance{}, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InOccurrenceRange(tt.rec, tt.from, tt.to))
		})
	}
}
