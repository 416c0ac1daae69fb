package marking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mind-engage/mindengage-marker/internal/mocks"
)

type fakeStore struct {
	mu        sync.Mutex
	jobs      []JobRecord
	results   map[int]DocumentResult
	failAfter int // fail SaveResult once this many results are saved; 0 disables
}

func (s *fakeStore) SaveJob(_ context.Context, rec JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, rec)
	return nil
}

func (s *fakeStore) SaveResult(_ context.Context, _ string, seq int, r DocumentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter > 0 && len(s.results) >= s.failAfter {
		return errors.New("database is locked")
	}
	if s.results == nil {
		s.results = map[int]DocumentResult{}
	}
	s.results[seq] = r
	return nil
}

func (s *fakeStore) last() JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[len(s.jobs)-1]
}

type fakeSink struct{ keys []string }

func (f *fakeSink) Put(key string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return key, nil
}

func TestRunner_LocalJob(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	sink := &fakeSink{}
	r := NewRunner(logs.GetLoggerFromLevel(slog.LevelDebug), store, nil, WithReports(sink))

	j := NewJob(ModeLocal, []Document{
		{ID: "a", Text: twoTasks, StudentName: "Ada"},
		{ID: "b", Text: "   "},
		{ID: "c", Text: twoTasks},
	}, "")
	req.NoError(r.Run(context.Background(), j))

	rec := j.Record()
	req.Equal(StatusCompleted, rec.Status)
	req.Equal(Progress{Processed: 3, Total: 3}, rec.Progress)
	req.NotNil(rec.Plan)
	req.NotNil(rec.FinishedAt)

	req.Len(rec.Results, 3)
	req.Equal([]string{"Ada", "Document 2", "Document 3"}, []string{rec.Results[0].Label, rec.Results[1].Label, rec.Results[2].Label})
	req.NotNil(rec.Results[0].Local)
	req.NotNil(rec.Results[0].Percentage)
	req.NotEmpty(rec.Results[1].Error)
	req.Contains(rec.Results[1].Text, "_Marking failed:")
	req.Len(rec.Errors, 1)
	req.True(strings.HasPrefix(rec.Errors[0], "Document 2: "))

	req.Equal([]string{"reports/" + j.ID + "/a.md", "reports/" + j.ID + "/c.md"}, sink.keys)
	req.Equal("reports/"+j.ID+"/a.md", rec.Results[0].ReportKey)
	req.Len(store.results, 3)
	req.Equal(StatusCompleted, store.last().Status)
}

func TestRunner_RemoteJobPausesBetweenDocuments(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockCompleter(ctrl)
	p := &pauses{}
	remote := testRemote(t, c, smallConfig(), p)
	store := &fakeStore{}
	r := NewRunner(logs.GetLoggerFromLevel(slog.LevelDebug), store, nil,
		WithRemote(remote), WithRunnerPause(p.sleep))

	c.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("marked", nil).Times(2)

	j := NewJob(ModeRemote, []Document{{Text: "one"}, {Text: "two"}}, "")
	require.NoError(t, r.Run(context.Background(), j))
	require.Equal(t, []time.Duration{DefaultInterDocumentDelay}, p.got)
	require.Equal(t, "marked", j.Record().Results[1].Text)
}

func TestRunner_RejectsUnprocessablePlan(t *testing.T) {
	store := &fakeStore{}
	r := NewRunner(logs.GetLoggerFromLevel(slog.LevelDebug), store, nil)

	j := NewJob(ModeLocal, []Document{{Text: strings.Repeat("x", 4*40001)}}, "")
	err := r.Run(context.Background(), j)
	require.ErrorIs(t, err, ErrSizeLimit)
	require.Equal(t, StatusFailed, j.Status())
	require.Zero(t, j.Progress().Processed)
	require.Len(t, store.jobs, 1)
	require.Empty(t, store.results)
}

func TestRunner_PersistenceFailureAbortsJob(t *testing.T) {
	store := &fakeStore{failAfter: 1}
	r := NewRunner(logs.GetLoggerFromLevel(slog.LevelDebug), store, nil)

	j := NewJob(ModeLocal, []Document{{Text: twoTasks}, {Text: twoTasks}, {Text: twoTasks}}, "")
	err := r.Run(context.Background(), j)
	require.ErrorContains(t, err, "database is locked")
	require.Equal(t, StatusFailed, j.Status())
	require.Equal(t, 1, j.Progress().Processed)
	require.Equal(t, StatusFailed, store.last().Status)
}

func TestRunner_Validation(t *testing.T) {
	r := NewRunner(logs.GetLoggerFromLevel(slog.LevelDebug), &fakeStore{}, nil)

	tests := []struct {
		name string
		job  *Job
	}{
		{"no documents", NewJob(ModeLocal, nil, "")},
		{"unknown mode", NewJob(Mode("batch"), []Document{{Text: "x"}}, "")},
		{"remote not configured", NewJob(ModeRemote, []Document{{Text: "x"}}, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Run(context.Background(), tt.job)
			require.ErrorIs(t, err, ErrValidation)
			require.Equal(t, StatusPending, tt.job.Status())
		})
	}
}
