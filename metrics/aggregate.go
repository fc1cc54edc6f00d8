// metrics/aggregate.go
package metrics

import (
	"sort"
	"time"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

// UnassignedDepartment labels records with no department reference in the
// department distribution.
const UnassignedDepartment = "Sem departamento"

// StatusBucket is one slice of the status distribution chart.
type StatusBucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// StatusDistribution reduces records into the four fixed dashboard
// buckets. Resolved counts with closed: both are terminal and the chart
// never split them. Critical-pending is carved out of pending, so the
// four counts always sum to len(recs).
func StatusDistribution(recs []models.NonConformance, now time.Time) []StatusBucket {
	buckets := []StatusBucket{
		{Key: "closed", Label: "Encerradas", Color: "#10b981"},
		{Key: "in-progress", Label: "Em andamento", Color: "#3b82f6"},
		{Key: "critical", Label: "Pendentes críticas", Color: "#ef4444"},
		{Key: "pending", Label: "Pendentes", Color: "#f59e0b"},
	}

	for _, rec := range recs {
		switch {
		case models.IsTerminalStatus(rec.Status):
			buckets[0].Count++
		case rec.Status == models.StatusInProgress:
			buckets[1].Count++
		case rec.Status == models.StatusPending && IsCritical(rec, now):
			buckets[2].Count++
		default:
			buckets[3].Count++
		}
	}

	return buckets
}

// DepartmentCount is one row of the department distribution, ordered by
// descending total.
type DepartmentCount struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// DepartmentDistribution counts records per department name. Ties keep
// the order departments first appear in the input.
func DepartmentDistribution(recs []models.NonConformance) []DepartmentCount {
	totals := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, rec := range recs {
		name := rec.DepartmentName
		if name == "" {
			name = UnassignedDepartment
		}
		if _, ok := totals[name]; !ok {
			firstSeen[name] = i
		}
		totals[name]++
	}

	out := make([]DepartmentCount, 0, len(totals))
	for name, total := range totals {
		out = append(out, DepartmentCount{Name: name, Total: total})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return firstSeen[out[i].Name] < firstSeen[out[j].Name]
	})

	return out
}

// MonthBucket is one calendar month of the six-month trend window.
type MonthBucket struct {
	// Key is year-qualified so two Januaries can never collide even if
	// the window grows past a year. Label is the bare short name the
	// chart axis shows.
	Key        string `json:"key"`
	Label      string `json:"label"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"inProgress"`
	Resolved   int    `json:"resolved"`
	Closed     int    `json:"closed"`
	Total      int    `json:"total"`
}

// MonthlyTrend buckets records into the six calendar months ending at
// now's month. There are always exactly six buckets; records outside the
// window are silently dropped.
func MonthlyTrend(recs []models.NonConformance, now time.Time) []MonthBucket {
	buckets := make([]MonthBucket, 6)
	index := make(map[string]int, 6)

	// Step from the first of the current month. Stepping from the raw
	// day would normalize month-end dates into the wrong month (May 31
	// minus 3 months lands on Mar 2) and collapse the window onto
	// duplicate keys.
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < 6; i++ {
		month := first.AddDate(0, i-5, 0)
		key := month.Format("Jan 2006")
		buckets[i] = MonthBucket{Key: key, Label: month.Format("Jan")}
		index[key] = i
	}

	for _, rec := range recs {
		if rec.OccurrenceDate.IsZero() {
			continue
		}
		occ := rec.OccurrenceDate
		i, ok := index[time.Date(occ.Year(), occ.Month(), 1, 0, 0, 0, 0, now.Location()).Format("Jan 2006")]
		if !ok {
			continue
		}
		switch rec.Status {
		case models.StatusPending:
			buckets[i].Pending++
		case models.StatusInProgress:
			buckets[i].InProgress++
		case models.StatusResolved:
			buckets[i].Resolved++
		case models.StatusClosed:
			buckets[i].Closed++
		}
		buckets[i].Total++
	}

	return buckets
}

// KPISet carries the headline dashboard counters.
type KPISet struct {
	Total       int `json:"total"`
	Urgent      int `json:"urgent"`
	Critical    int `json:"critical"`
	Approaching int `json:"approaching"`
	Overdue     int `json:"overdue"`
}

// KPIs computes the headline counters over a record set.
func KPIs(recs []models.NonConformance, now time.Time) KPISet {
	var k KPISet
	k.Total = len(recs)
	for _, rec := range recs {
		if IsUrgent(rec, now) {
			k.Urgent++
		}
		if IsCritical(rec, now) {
			k.Critical++
		}
		if IsApproachingDeadline(rec, now) {
			k.Approaching++
		}
		if IsPastDeadline(rec, now) {
			k.Overdue++
		}
	}
	return k
}
