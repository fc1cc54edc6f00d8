package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/storage"
)

// lastStampSet digs the $set document of the last update command the
// mock server saw.
func lastStampSet(t *testing.T, mt *mtest.T) bson.Raw {
	t.Helper()

	var cmd bson.Raw
	for _, ev := range mt.GetAllStartedEvents() {
		if ev.CommandName == "update" {
			cmd = ev.Command
		}
	}
	require.NotNil(t, cmd, "no update command was issued")

	updates, err := cmd.Lookup("updates").Array().Values()
	require.NoError(t, err)
	require.NotEmpty(t, updates)

	return updates[0].Document().Lookup("u", "$set").Document()
}

func dueReportDoc(id, orgID primitive.ObjectID, now time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "organizationId", Value: orgID},
		{Key: "name", Value: "Resumo semanal"},
		{Key: "reportType", Value: models.ReportTypeSummary},
		{Key: "format", Value: models.ReportFormatPDF},
		{Key: "frequency", Value: models.FrequencyWeekly},
		{Key: "enabled", Value: true},
		{Key: "nextRunAt", Value: now.Add(-time.Minute)},
	}
}

func TestRunDue(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	interval := 5 * time.Minute

	mt.Run("successful run stamps one full period out", func(mt *mtest.T) {
		store, err := storage.New(t.TempDir(), "http://localhost:8080")
		require.NoError(t, err)

		runner := New(mt.DB, store, interval)
		reportID := primitive.NewObjectID()

		mt.AddMockResponses(
			// due scheduled reports
			mtest.CreateCursorResponse(0, "qualicontrol.scheduled_reports", mtest.FirstBatch,
				dueReportDoc(reportID, primitive.NewObjectID(), now)),
			// record set for the report (empty is a valid render)
			mtest.CreateCursorResponse(0, "qualicontrol.nonconformances", mtest.FirstBatch),
			// the stamp update
			mtest.CreateSuccessResponse(),
		)

		runner.runDue(context.Background(), now)

		set := lastStampSet(t, mt)
		assert.Equal(t, now.UnixMilli(), set.Lookup("lastRunAt").Time().UnixMilli())
		assert.Equal(t, now.AddDate(0, 0, 7).UnixMilli(), set.Lookup("nextRunAt").Time().UnixMilli())

		path := set.Lookup("lastRunPath").StringValue()
		require.NotEmpty(t, path)
		f, err := store.Open(path)
		require.NoError(t, err, "stamped path must exist in the store")
		f.Close()
	})

	mt.Run("failed run reschedules one tick out", func(mt *mtest.T) {
		store, err := storage.New(t.TempDir(), "http://localhost:8080")
		require.NoError(t, err)

		runner := New(mt.DB, store, interval)
		reportID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "qualicontrol.scheduled_reports", mtest.FirstBatch,
				dueReportDoc(reportID, primitive.NewObjectID(), now)),
			// the record query fails, so the run fails
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11600,
				Message: "interrupted",
				Name:    "InterruptedAtShutdown",
			}),
			mtest.CreateSuccessResponse(),
		)

		runner.runDue(context.Background(), now)

		set := lastStampSet(t, mt)
		// retry at the next tick window, not a full report period
		assert.Equal(t, now.Add(interval).UnixMilli(), set.Lookup("nextRunAt").Time().UnixMilli())
		// no artifact path on a failed run
		_, lookupErr := set.LookupErr("lastRunPath")
		assert.Error(t, lookupErr, "failed run must not stamp lastRunPath")
	})
}
