package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-marker/internal/batch"
	"github.com/mind-engage/mindengage-marker/internal/db"
	"github.com/mind-engage/mindengage-marker/internal/marking"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "jobs.db") + "?_pragma=busy_timeout(5000)"
	sqlDB, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLStore(sqlDB),
	}
}

func record(id string, created time.Time, status marking.Status) marking.JobRecord {
	plan := batch.DefaultAdvisor().Recommend([]string{"a short answer"})
	return marking.JobRecord{
		ID:        id,
		Mode:      marking.ModeLocal,
		Status:    status,
		Progress:  marking.Progress{Processed: 0, Total: 2, CurrentLabel: "Ada"},
		Plan:      &plan,
		Errors:    []string{},
		CreatedAt: created.UTC().Truncate(time.Second),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			now := time.Now()

			rec := record("job-1", now, marking.StatusRunning)
			req.NoError(s.SaveJob(ctx, rec))

			pct := 80
			second := marking.DocumentResult{DocumentID: "d2", Label: "Document 2", Mode: marking.ModeLocal, Error: "validation failed: text is blank. Please try again in a few minutes.", Text: "## Document 2"}
			first := marking.DocumentResult{DocumentID: "d1", Label: "Ada", Mode: marking.ModeLocal, Percentage: &pct, Grade: "A (Excellent)", Text: "# Marking Report"}
			req.NoError(s.SaveResult(ctx, rec.ID, 1, second))
			req.NoError(s.SaveResult(ctx, rec.ID, 0, first))

			done := now.UTC().Truncate(time.Second)
			rec.Status = marking.StatusCompleted
			rec.Progress = marking.Progress{Processed: 2, Total: 2}
			rec.Errors = []string{"Document 2: validation failed"}
			rec.FinishedAt = &done
			req.NoError(s.SaveJob(ctx, rec))

			got, err := s.GetJob(ctx, rec.ID)
			req.NoError(err)
			req.Equal(marking.StatusCompleted, got.Status)
			req.Equal(rec.Progress, got.Progress)
			req.Equal(rec.Errors, got.Errors)
			req.Equal(rec.Plan.RecommendedBatchSize, got.Plan.RecommendedBatchSize)
			req.True(rec.CreatedAt.Equal(got.CreatedAt))
			req.NotNil(got.FinishedAt)
			req.Len(got.Results, 2)
			req.Equal("d1", got.Results[0].DocumentID)
			req.Equal(80, *got.Results[0].Percentage)
			req.Equal("d2", got.Results[1].DocumentID)
			req.Nil(got.Results[1].Percentage)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetJob(context.Background(), "missing")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_ListJobs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			base := time.Unix(1_700_000_000, 0)
			req.NoError(s.SaveJob(ctx, record("old", base, marking.StatusCompleted)))
			req.NoError(s.SaveJob(ctx, record("new", base.Add(time.Hour), marking.StatusFailed)))
			req.NoError(s.SaveJob(ctx, record("mid", base.Add(time.Minute), marking.StatusCompleted)))

			all, err := s.ListJobs(ctx, ListOpts{})
			req.NoError(err)
			req.Equal([]string{"new", "mid", "old"}, ids(all))

			done, err := s.ListJobs(ctx, ListOpts{Status: marking.StatusCompleted, Limit: 1})
			req.NoError(err)
			req.Equal([]string{"mid"}, ids(done))

			page, err := s.ListJobs(ctx, ListOpts{Offset: 2})
			req.NoError(err)
			req.Equal([]string{"old"}, ids(page))
		})
	}
}

func TestMemoryStore_ResultNeedsJob(t *testing.T) {
	err := NewMemoryStore().SaveResult(context.Background(), "nope", 0, marking.DocumentResult{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_WritesEvents(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "ev.db"))
	require.NoError(t, err)
	defer sqlDB.Close()
	s := NewSQLStore(sqlDB)

	rec := record("job-ev", time.Now(), marking.StatusRunning)
	require.NoError(t, s.SaveJob(ctx, rec))
	require.NoError(t, s.SaveResult(ctx, rec.ID, 0, marking.DocumentResult{DocumentID: "d1", Label: "Ada"}))

	evs, err := s.Events().Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, "JobSaved", evs[0].Type)
	require.Equal(t, "DocumentMarked", evs[1].Type)
	require.Equal(t, "job-ev", evs[1].Key)
	require.Contains(t, evs[1].DataJSON, `"document_id":"d1"`)
}

func ids(ss []Summary) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ID
	}
	return out
}
