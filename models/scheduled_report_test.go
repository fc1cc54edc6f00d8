package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduledReportNextAfter(t *testing.T) {
	from := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		frequency string
		want      time.Time
	}{
		{FrequencyDaily, time.Date(2024, 5, 16, 8, 0, 0, 0, time.UTC)},
		{FrequencyWeekly, time.Date(2024, 5, 22, 8, 0, 0, 0, time.UTC)},
		{FrequencyMonthly, time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)},
		// anything unrecognized falls back to daily
		{"", time.Date(2024, 5, 16, 8, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		s := ScheduledReport{Frequency: tc.frequency}
		assert.Equal(t, tc.want, s.NextAfter(from), "frequency %q", tc.frequency)
	}
}
