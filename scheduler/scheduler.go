// Package scheduler runs standing report orders in the background. A
// single goroutine wakes on a fixed interval, claims the due entries and
// writes the rendered documents into the file store.
package scheduler

import (
	"bytes"
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/export"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/metrics"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/storage"
)

type Runner struct {
	reports         *mongo.Collection
	nonConformances *mongo.Collection
	store           *storage.Store
	interval        time.Duration
}

func New(db *mongo.Database, store *storage.Store, interval time.Duration) *Runner {
	return &Runner{
		reports:         db.Collection("scheduled_reports"),
		nonConformances: db.Collection("nonconformances"),
		store:           store,
		interval:        interval,
	}
}

// Start launches the loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		log.Printf("Report scheduler started (interval %s)", r.interval)
		for {
			select {
			case <-ctx.Done():
				log.Println("Report scheduler stopped")
				return
			case <-ticker.C:
				r.runDue(ctx, time.Now().UTC())
			}
		}
	}()
}

// runDue claims and executes every enabled entry whose NextRunAt has
// elapsed. One failing report never blocks the others.
func (r *Runner) runDue(ctx context.Context, now time.Time) {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cursor, err := r.reports.Find(runCtx, bson.M{
		"enabled":   true,
		"nextRunAt": bson.M{"$lte": now},
	})
	if err != nil {
		log.Printf("scheduler: list due reports error: %v", err)
		return
	}

	var due []models.ScheduledReport
	if err := cursor.All(runCtx, &due); err != nil {
		log.Printf("scheduler: decode due reports error: %v", err)
		return
	}

	for i := range due {
		if err := r.runOne(runCtx, &due[i], now); err != nil {
			log.Printf("scheduler: report %s (%s) failed: %v", due[i].ID.Hex(), due[i].Name, err)
			// push the retry to the next tick window, not a full period
			r.stamp(runCtx, &due[i], now, now.Add(r.interval), "")
			continue
		}
	}
}

func (r *Runner) runOne(ctx context.Context, report *models.ScheduledReport, now time.Time) error {
	filter := bson.M{"organizationId": report.OrganizationID}
	if len(report.DepartmentIDs) > 0 {
		filter["departmentId"] = bson.M{"$in": report.DepartmentIDs}
	}

	cursor, err := r.nonConformances.Find(ctx, filter)
	if err != nil {
		return err
	}
	var recs []models.NonConformance
	if err := cursor.All(ctx, &recs); err != nil {
		return err
	}

	data, err := render(report, recs, now)
	if err != nil {
		return err
	}

	name := export.Filename(report.Name, now, report.Format)
	path, _, err := r.store.Save(name, bytes.NewReader(data))
	if err != nil {
		return err
	}

	log.Printf("scheduler: report %s (%s) rendered %d records to %s",
		report.ID.Hex(), report.Name, len(recs), path)
	r.stamp(ctx, report, now, report.NextAfter(now), path)
	return nil
}

func render(report *models.ScheduledReport, recs []models.NonConformance, now time.Time) ([]byte, error) {
	if report.ReportType == models.ReportTypeNonConformances {
		if report.Format == models.ReportFormatXLSX {
			return export.NonConformancesXLSX(recs)
		}
		// a record listing in PDF is one page per record
		return export.NonConformanceListPDF(recs)
	}

	kpis := metrics.KPIs(recs, now)
	statuses := metrics.StatusDistribution(recs, now)
	departments := metrics.DepartmentDistribution(recs)
	trend := metrics.MonthlyTrend(recs, now)

	if report.Format == models.ReportFormatXLSX {
		return export.SummaryXLSX(kpis, statuses, departments, trend)
	}
	return export.SummaryPDF(kpis, statuses, departments, trend)
}

func (r *Runner) stamp(ctx context.Context, report *models.ScheduledReport, ranAt, next time.Time, path string) {
	update := bson.M{
		"lastRunAt": ranAt,
		"nextRunAt": next,
		"updatedAt": ranAt,
	}
	if path != "" {
		update["lastRunPath"] = path
	}
	if _, err := r.reports.UpdateOne(ctx, bson.M{"_id": report.ID}, bson.M{"$set": update}); err != nil {
		log.Printf("scheduler: stamp report %s error: %v", report.ID.Hex(), err)
	}
}
