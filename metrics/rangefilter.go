// metrics/rangefilter.go
package metrics

import (
	"time"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

// InOccurrenceRange reports whether the record's occurrence date falls
// inside the optional [from, to] window. A nil bound passes that side;
// to is inclusive through the end of its calendar day. A record without
// an occurrence date never matches.
func InOccurrenceRange(rec models.NonConformance, from, to *time.Time) bool {
	if rec.OccurrenceDate.IsZero() {
		return false
	}
	if from != nil && rec.OccurrenceDate.Before(StartOfDay(*from)) {
		return false
	}
	if to != nil && rec.OccurrenceDate.After(EndOfDay(*to)) {
		return false
	}
	return true
}
