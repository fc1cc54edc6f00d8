// Package metrics computes the derived labels and summaries the dashboard
// and report views are built from. Everything here is pure: records in,
// values out, with the reference time passed explicitly so behavior is
// deterministic under test.
package metrics

import (
	"math"
	"time"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

// StartOfDay truncates t to its local calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's local calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// IsUrgent reports whether the record's occurrence falls within the last
// 7 days, regardless of status.
func IsUrgent(rec models.NonConformance, now time.Time) bool {
	if rec.OccurrenceDate.IsZero() {
		return false
	}
	diff := now.Sub(rec.OccurrenceDate)
	if diff < 0 {
		diff = -diff
	}
	days := math.Ceil(diff.Hours() / 24)
	return days < 7
}

// pendingResponseElapsed is the shared core of IsCritical and
// IsPastDeadline: a pending record whose committed response date has
// already elapsed. Comparisons are at day granularity.
func pendingResponseElapsed(rec models.NonConformance, now time.Time) bool {
	if rec.Status != models.StatusPending || rec.ResponseDate == nil {
		return false
	}
	return rec.ResponseDate.Before(StartOfDay(now))
}

// IsCritical reports a pending record whose response date has elapsed.
func IsCritical(rec models.NonConformance, now time.Time) bool {
	return pendingResponseElapsed(rec, now)
}

// IsPastDeadline feeds the "overdue" KPI count. It is currently the same
// predicate as IsCritical; the two names are kept apart because they
// serve different call sites and may diverge.
func IsPastDeadline(rec models.NonConformance, now time.Time) bool {
	return pendingResponseElapsed(rec, now)
}

// IsApproachingDeadline reports a pending record whose response date
// falls between today and four days out, inclusive on both ends.
func IsApproachingDeadline(rec models.NonConformance, now time.Time) bool {
	if rec.Status != models.StatusPending || rec.ResponseDate == nil {
		return false
	}
	lower := StartOfDay(now)
	upper := EndOfDay(now.AddDate(0, 0, 4))
	return !rec.ResponseDate.Before(lower) && !rec.ResponseDate.After(upper)
}
