package marking

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mind-engage/mindengage-marker/internal/batch"
	"github.com/mind-engage/mindengage-marker/internal/retry"
	"github.com/mind-engage/mindengage-marker/internal/storage"
)

// DefaultInterDocumentDelay separates documents of a remote job.
const DefaultInterDocumentDelay = 2 * time.Second

// Store persists jobs and their per-document results.
type Store interface {
	SaveJob(ctx context.Context, rec JobRecord) error
	SaveResult(ctx context.Context, jobID string, seq int, r DocumentResult) error
}

// ReportSink receives rendered reports.
type ReportSink interface {
	Put(key string, r io.Reader) (string, error)
}

type RunnerOption func(*Runner)

func WithRemote(e *RemoteEngine) RunnerOption  { return func(r *Runner) { r.remote = e } }
func WithReports(s ReportSink) RunnerOption    { return func(r *Runner) { r.reports = s } }
func WithAdvisor(a batch.Advisor) RunnerOption { return func(r *Runner) { r.advisor = a } }
func WithInterDocumentDelay(d time.Duration) RunnerOption {
	return func(r *Runner) { r.interDoc = d }
}
func WithRunnerPause(fn func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *Runner) { r.pause = fn }
}

// Runner processes jobs one document at a time, in input order.
type Runner struct {
	log      *slog.Logger
	store    Store
	local    *LocalEngine
	remote   *RemoteEngine
	reports  ReportSink
	advisor  batch.Advisor
	interDoc time.Duration
	pause    func(ctx context.Context, d time.Duration) error
}

func NewRunner(log *slog.Logger, store Store, local *LocalEngine, opts ...RunnerOption) *Runner {
	r := &Runner{
		log:      log,
		store:    store,
		local:    local,
		advisor:  batch.DefaultAdvisor(),
		interDoc: DefaultInterDocumentDelay,
		pause:    retry.Sleep,
	}
	for _, o := range opts {
		o(r)
	}
	if r.local == nil {
		r.local = NewLocalEngine(nil)
	}
	return r
}

// Advisor is the batch advisor used to plan jobs.
func (r *Runner) Advisor() batch.Advisor { return r.advisor }

// Run marks every document of j. Per-document failures are recorded on
// the job and in its results; only persistence failures, cancellation
// and an unprocessable batch plan abort the job.
func (r *Runner) Run(ctx context.Context, j *Job) error {
	if err := r.check(j); err != nil {
		return err
	}

	plan := r.advisor.Recommend(lo.Map(j.Documents, func(d Document, _ int) string { return d.Text }))
	j.setPlan(plan)
	if !plan.Processable() {
		err := &SizeLimitError{Reason: plan.Reason}
		j.addError(UserMessage(err))
		j.finish(StatusFailed)
		if serr := r.store.SaveJob(ctx, j.Record()); serr != nil {
			return fmt.Errorf("save job %s: %w", j.ID, serr)
		}
		return err
	}

	j.start()
	if err := r.store.SaveJob(ctx, j.Record()); err != nil {
		j.finish(StatusFailed)
		return fmt.Errorf("save job %s: %w", j.ID, err)
	}
	r.log.Info("Job started", "job", j.ID, "mode", j.Mode, "documents", len(j.Documents),
		"batch_size", plan.RecommendedBatchSize, "risk", plan.Risk)

	for i, doc := range j.Documents {
		if i > 0 && j.Mode == ModeRemote && r.interDoc > 0 {
			if err := r.pause(ctx, r.interDoc); err != nil {
				return r.abort(ctx, j, err)
			}
		}
		label := documentLabel(doc, i)
		j.current(label)

		res := r.markOne(ctx, j, doc, label)
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, j, err)
		}
		if err := r.store.SaveResult(ctx, j.ID, i, res); err != nil {
			return r.abort(ctx, j, fmt.Errorf("save result %s: %w", label, err))
		}
		j.complete(res)
		r.log.Debug("Document marked", "job", j.ID, "document", label, "processed", i+1, "total", len(j.Documents))
	}

	j.finish(StatusCompleted)
	if err := r.store.SaveJob(ctx, j.Record()); err != nil {
		return fmt.Errorf("save job %s: %w", j.ID, err)
	}
	r.log.Info("Job completed", "job", j.ID, "errors", len(j.Record().Errors))
	return nil
}

func (r *Runner) check(j *Job) error {
	switch {
	case len(j.Documents) == 0:
		return &ValidationError{Fields: []string{"documents is required"}, Err: ErrValidation}
	case j.Mode != ModeLocal && j.Mode != ModeRemote:
		return &ValidationError{Fields: []string{fmt.Sprintf("mode %q is unknown", j.Mode)}, Err: ErrValidation}
	case j.Mode == ModeRemote && r.remote == nil:
		return &ValidationError{Fields: []string{"remote marking is not configured"}, Err: ErrValidation}
	}
	return nil
}

func (r *Runner) abort(ctx context.Context, j *Job, cause error) error {
	r.log.Error("Job aborted", "job", j.ID, "error", cause)
	j.addError(cause.Error())
	j.finish(StatusFailed)
	// the job is already lost; a detached context still records why
	if err := r.store.SaveJob(context.WithoutCancel(ctx), j.Record()); err != nil {
		r.log.Error("Saving aborted job", "job", j.ID, "error", err)
	}
	return cause
}

func (r *Runner) markOne(ctx context.Context, j *Job, doc Document, label string) DocumentResult {
	res := DocumentResult{DocumentID: doc.ID, Label: label, Mode: j.Mode}
	var err error
	switch j.Mode {
	case ModeRemote:
		var rep RemoteReport
		rep, err = r.remote.Mark(ctx, doc, j.Memo)
		if err == nil {
			res.DocumentID, res.Text, res.Remote = rep.DocumentID, rep.Text, &rep
		}
	default:
		var rep Report
		rep, err = r.local.Mark(doc, j.Memo)
		if err == nil {
			res.DocumentID, res.Text, res.Local = rep.DocumentID, rep.Text, &rep
			res.Percentage, res.Grade = rep.Result.Percentage, rep.Grade
		}
	}
	if err != nil {
		msg := UserMessage(err)
		r.log.Warn("Document failed", "job", j.ID, "document", label, "error", err)
		j.addError(label + ": " + msg)
		res.Error = msg
		res.Text = fmt.Sprintf("## %s\n\n_Marking failed: %s_", label, msg)
		return res
	}
	if r.reports != nil {
		key := storage.ReportKey(j.ID, res.DocumentID)
		stored, perr := r.reports.Put(key, strings.NewReader(res.Text))
		if perr != nil {
			r.log.Warn("Storing report", "key", key, "error", perr)
		} else {
			res.ReportKey = stored
		}
	}
	return res
}

func documentLabel(d Document, i int) string {
	if s := strings.TrimSpace(d.StudentName); s != "" {
		return s
	}
	return fmt.Sprintf("Document %d", i+1)
}
