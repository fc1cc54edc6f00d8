package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

var now = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

func datePtr(t time.Time) *time.Time { return &t }

func pendingWithResponse(resp time.Time) models.NonConformance {
	return models.NonConformance{
		Status:         models.StatusPending,
		OccurrenceDate: now.AddDate(0, 0, -30),
		ResponseDate:   datePtr(resp),
	}
}

func TestIsUrgent(t *testing.T) {
	tests := []struct {
		name       string
		occurrence time.Time
		want       bool
	}{
		{"today", now, true},
		{"six days ago", now.AddDate(0, 0, -6), true},
		{"six and a half days ago", now.Add(-156 * time.Hour), false},
		{"seven days ago", now.AddDate(0, 0, -7), false},
		{"thirty days ago", now.AddDate(0, 0, -30), false},
		{"future occurrence three days out", now.AddDate(0, 0, 3), true},
		{"zero occurrence", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.NonConformance{Status: models.StatusClosed, OccurrenceDate: tt.occurrence}
			assert.Equal(t, tt.want, IsUrgent(rec, now))
		})
	}
}

func TestUrgentIgnoresStatus(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusInProgress, models.StatusResolved, models.StatusClosed} {
		rec := models.NonConformance{Status: status, OccurrenceDate: now.AddDate(0, 0, -2)}
		assert.True(t, IsUrgent(rec, now), "status %s", status)
	}
}

func TestDeadlineLabelsRequirePendingStatus(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	for _, status := range []string{models.StatusInProgress, models.StatusResolved, models.StatusClosed} {
		rec := models.NonConformance{
			Status:         status,
			OccurrenceDate: now.AddDate(0, 0, -30),
			ResponseDate:   datePtr(yesterday),
		}
		assert.False(t, IsCritical(rec, now), "status %s", status)
		assert.False(t, IsApproachingDeadline(rec, now), "status %s", status)
		assert.False(t, IsPastDeadline(rec, now), "status %s", status)
	}
}

func TestDeadlineLabelsRequireResponseDate(t *testing.T) {
	rec := models.NonConformance{Status: models.StatusPending, OccurrenceDate: now.AddDate(0, 0, -30)}
	assert.False(t, IsCritical(rec, now))
	assert.False(t, IsApproachingDeadline(rec, now))
	assert.False(t, IsPastDeadline(rec, now))
}

func TestResponseDateToday(t *testing.T) {
	rec := pendingWithResponse(StartOfDay(now))
	assert.False(t, IsCritical(rec, now))
	assert.True(t, IsApproachingDeadline(rec, now))
}

func TestResponseDateYesterday(t *testing.T) {
	rec := pendingWithResponse(now.AddDate(0, 0, -1))
	assert.True(t, IsCritical(rec, now))
	assert.True(t, IsPastDeadline(rec, now))
	assert.False(t, IsApproachingDeadline(rec, now))
}

func TestResponseDateFourDaysOut(t *testing.T) {
	rec := pendingWithResponse(now.AddDate(0, 0, 4))
	assert.False(t, IsCritical(rec, now))
	assert.True(t, IsApproachingDeadline(rec, now))
}

func TestResponseDateFiveDaysOut(t *testing.T) {
	rec := pendingWithResponse(now.AddDate(0, 0, 5))
	assert.False(t, IsCritical(rec, now))
	assert.False(t, IsApproachingDeadline(rec, now))
}

func TestCriticalAndPastDeadlineAgree(t *testing.T) {
	dates := []time.Time{
		now.AddDate(0, 0, -10),
		now.AddDate(0, 0, -1),
		StartOfDay(now),
		now.AddDate(0, 0, 2),
	}
	for _, d := range dates {
		rec := pendingWithResponse(d)
		assert.Equal(t, IsCritical(rec, now), IsPastDeadline(rec, now), "response %v", d)
	}
}

func TestDayBoundaries(t *testing.T) {
	// A response stamped late yesterday is still elapsed; one stamped at
	// the first instant of today is not.
	lateYesterday := time.Date(2024, 5, 14, 23, 59, 59, 0, time.UTC)
	firstInstantToday := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsCritical(pendingWithResponse(lateYesterday), now))
	assert.False(t, IsCritical(pendingWithResponse(firstInstantToday), now))

	// End of the fourth day out is still approaching; the instant after is not.
	endOfFourth := EndOfDay(now.AddDate(0, 0, 4))
	assert.True(t, IsApproachingDeadline(pendingWithResponse(endOfFourth), now))
	assert.False(t, IsApproachingDeadline(pendingWithResponse(endOfFourth.Add(time.Nanosecond)), now))
}
