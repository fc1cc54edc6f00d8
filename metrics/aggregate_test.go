package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

func TestStatusDistributionBuckets(t *testing.T) {
	recs := []models.NonConformance{
		{Status: models.StatusClosed, OccurrenceDate: now.AddDate(0, 0, -20)},
		{Status: models.StatusResolved, OccurrenceDate: now.AddDate(0, 0, -20)},
		{Status: models.StatusInProgress, OccurrenceDate: now.AddDate(0, 0, -20)},
		// pending with elapsed response date -> critical bucket
		pendingWithResponse(now.AddDate(0, 0, -3)),
		// pending with future response date -> plain pending bucket
		pendingWithResponse(now.AddDate(0, 0, 10)),
		// pending without response date -> plain pending bucket
		{Status: models.StatusPending, OccurrenceDate: now.AddDate(0, 0, -20)},
	}

	buckets := StatusDistribution(recs, now)
	require.Len(t, buckets, 4)

	assert.Equal(t, "closed", buckets[0].Key)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, "in-progress", buckets[1].Key)
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, "critical", buckets[2].Key)
	assert.Equal(t, 1, buckets[2].Count)
	assert.Equal(t, "pending", buckets[3].Key)
	assert.Equal(t, 2, buckets[3].Count)

	total := 0
	for _, b := range buckets {
		assert.NotEmpty(t, b.Color)
		total += b.Count
	}
	assert.Equal(t, len(recs), total)
}

func TestDepartmentDistributionOrder(t *testing.T) {
	recs := []models.NonConformance{
		{DepartmentName: "A", OccurrenceDate: now},
		{DepartmentName: "A", OccurrenceDate: now},
		{DepartmentName: "B", OccurrenceDate: now},
	}

	out := DepartmentDistribution(recs)
	require.Len(t, out, 2)
	assert.Equal(t, DepartmentCount{Name: "A", Total: 2}, out[0])
	assert.Equal(t, DepartmentCount{Name: "B", Total: 1}, out[1])
}

func TestDepartmentDistributionTiesKeepInputOrder(t *testing.T) {
	recs := []models.NonConformance{
		{DepartmentName: "Qualidade", OccurrenceDate: now},
		{DepartmentName: "Produção", OccurrenceDate: now},
		{DepartmentName: "Logística", OccurrenceDate: now},
	}

	out := DepartmentDistribution(recs)
	require.Len(t, out, 3)
	assert.Equal(t, "Qualidade", out[0].Name)
	assert.Equal(t, "Produção", out[1].Name)
	assert.Equal(t, "Logística", out[2].Name)
}

func TestDepartmentDistributionFallbackLabel(t *testing.T) {
	recs := []models.NonConformance{{OccurrenceDate: now}}
	out := DepartmentDistribution(recs)
	require.Len(t, out, 1)
	assert.Equal(t, UnassignedDepartment, out[0].Name)
}

func TestMonthlyTrendAlwaysSixBuckets(t *testing.T) {
	buckets := MonthlyTrend(nil, now)
	require.Len(t, buckets, 6)

	labels := make([]string, 0, 6)
	for _, b := range buckets {
		labels = append(labels, b.Label)
		assert.Zero(t, b.Total)
	}
	assert.Equal(t, []string{"Dec", "Jan", "Feb", "Mar", "Apr", "May"}, labels)
}

func TestMonthlyTrendCountsAndWindow(t *testing.T) {
	recs := []models.NonConformance{
		{Status: models.StatusPending, OccurrenceDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{Status: models.StatusClosed, OccurrenceDate: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
		{Status: models.StatusInProgress, OccurrenceDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		// outside the six-month window: dropped, not erred
		{Status: models.StatusPending, OccurrenceDate: time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)},
		{Status: models.StatusPending, OccurrenceDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	buckets := MonthlyTrend(recs, now)
	require.Len(t, buckets, 6)

	may := buckets[5]
	assert.Equal(t, "May 2024", may.Key)
	assert.Equal(t, 1, may.Pending)
	assert.Equal(t, 1, may.Closed)
	assert.Equal(t, 2, may.Total)

	march := buckets[3]
	assert.Equal(t, 1, march.InProgress)
	assert.Equal(t, 1, march.Total)

	grand := 0
	for _, b := range buckets {
		grand += b.Total
	}
	assert.Equal(t, 3, grand)
}

func TestMonthlyTrendMonthEndWindow(t *testing.T) {
	// May 31 steps through short months; the window must still be the
	// six distinct months Dec 2023 through May 2024.
	monthEnd := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	recs := []models.NonConformance{
		{Status: models.StatusPending, OccurrenceDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{Status: models.StatusClosed, OccurrenceDate: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)},
	}

	buckets := MonthlyTrend(recs, monthEnd)
	require.Len(t, buckets, 6)

	keys := make([]string, 0, 6)
	for _, b := range buckets {
		keys = append(keys, b.Key)
	}
	assert.Equal(t, []string{"Dec 2023", "Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024", "May 2024"}, keys)

	assert.Equal(t, 1, buckets[2].Pending, "Feb record must land in the Feb bucket")
	assert.Equal(t, 1, buckets[5].Closed)

	grand := 0
	for _, b := range buckets {
		grand += b.Total
	}
	assert.Equal(t, len(recs), grand)
}

func TestKPIs(t *testing.T) {
	recs := []models.NonConformance{
		pendingWithResponse(now.AddDate(0, 0, -2)),                                     // critical + overdue
		pendingWithResponse(now.AddDate(0, 0, 2)),                                      // approaching
		{Status: models.StatusClosed, OccurrenceDate: now.AddDate(0, 0, -1)},           // urgent only
		{Status: models.StatusInProgress, OccurrenceDate: now.AddDate(0, 0, -40)},      // none
	}

	k := KPIs(recs, now)
	assert.Equal(t, 4, k.Total)
	assert.Equal(t, 1, k.Urgent)
	assert.Equal(t, 1, k.Critical)
	assert.Equal(t, 1, k.Approaching)
	assert.Equal(t, k.Critical, k.Overdue)
}
