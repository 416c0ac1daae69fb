package marking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-marker/internal/batch"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Progress struct {
	Processed    int    `json:"processed"`
	Total        int    `json:"total"`
	CurrentLabel string `json:"current_label"`
}

// DocumentResult is the outcome for one document of a job. Error is set,
// and Text carries inline error content, when the document failed.
type DocumentResult struct {
	DocumentID string        `json:"document_id"`
	Label      string        `json:"label"`
	Mode       Mode          `json:"mode"`
	Percentage *int          `json:"percentage,omitempty"`
	Grade      string        `json:"grade,omitempty"`
	Text       string        `json:"text"`
	ReportKey  string        `json:"report_key,omitempty"`
	Error      string        `json:"error,omitempty"`
	Local      *Report       `json:"local,omitempty"`
	Remote     *RemoteReport `json:"remote,omitempty"`
}

// Job is a batch of documents marked in one mode. Its mutable state is
// guarded so progress can be read while the runner works.
type Job struct {
	ID        string
	Mode      Mode
	Memo      string
	Documents []Document
	CreatedAt time.Time

	mu       sync.Mutex
	status   Status
	progress Progress
	plan     *batch.Plan
	errs     []string
	results  []DocumentResult
	finished time.Time
}

func NewJob(mode Mode, docs []Document, memo string) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Mode:      mode,
		Memo:      memo,
		Documents: docs,
		CreatedAt: time.Now().UTC(),
		status:    StatusPending,
		progress:  Progress{Total: len(docs)},
	}
}

// JobRecord is a point-in-time copy of a job, as persisted and served.
type JobRecord struct {
	ID         string           `json:"id"`
	Mode       Mode             `json:"mode"`
	Status     Status           `json:"status"`
	Progress   Progress         `json:"progress"`
	Plan       *batch.Plan      `json:"plan,omitempty"`
	Errors     []string         `json:"errors"`
	Results    []DocumentResult `json:"results"`
	CreatedAt  time.Time        `json:"created_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

func (j *Job) Record() JobRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec := JobRecord{
		ID:        j.ID,
		Mode:      j.Mode,
		Status:    j.status,
		Progress:  j.progress,
		Plan:      j.plan,
		Errors:    append([]string{}, j.errs...),
		Results:   append([]DocumentResult{}, j.results...),
		CreatedAt: j.CreatedAt,
	}
	if !j.finished.IsZero() {
		t := j.finished
		rec.FinishedAt = &t
	}
	return rec
}

func (j *Job) Progress() Progress {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) setPlan(p batch.Plan) {
	j.mu.Lock()
	j.plan = &p
	j.mu.Unlock()
}

func (j *Job) start() {
	j.mu.Lock()
	j.status = StatusRunning
	j.mu.Unlock()
}

func (j *Job) current(label string) {
	j.mu.Lock()
	j.progress.CurrentLabel = label
	j.mu.Unlock()
}

// complete appends r in submission order and advances progress.
func (j *Job) complete(r DocumentResult) {
	j.mu.Lock()
	j.results = append(j.results, r)
	j.progress.Processed++
	j.mu.Unlock()
}

func (j *Job) addError(msg string) {
	j.mu.Lock()
	j.errs = append(j.errs, msg)
	j.mu.Unlock()
}

func (j *Job) finish(s Status) {
	j.mu.Lock()
	j.status = s
	j.progress.CurrentLabel = ""
	j.finished = time.Now().UTC()
	j.mu.Unlock()
}
