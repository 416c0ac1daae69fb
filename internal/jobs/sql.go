package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-marker/internal/batch"
	"github.com/mind-engage/mindengage-marker/internal/marking"
	syncx "github.com/mind-engage/mindengage-marker/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, events: syncx.NewEventRepo(db)}
}

func (s *SQLStore) SaveJob(ctx context.Context, rec marking.JobRecord) error {
	pj, err := json.Marshal(rec.Progress)
	if err != nil {
		return err
	}
	planJSON := ""
	if rec.Plan != nil {
		b, err := json.Marshal(rec.Plan)
		if err != nil {
			return err
		}
		planJSON = string(b)
	}
	ej, err := json.Marshal(nonNil(rec.Errors))
	if err != nil {
		return err
	}
	var finished sql.NullInt64
	if rec.FinishedAt != nil {
		finished = sql.NullInt64{Int64: rec.FinishedAt.Unix(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO marking_jobs (id,mode,status,progress_json,plan_json,errors_json,created_at,finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status, progress_json=EXCLUDED.progress_json,
		  plan_json=EXCLUDED.plan_json, errors_json=EXCLUDED.errors_json, finished_at=EXCLUDED.finished_at`,
		rec.ID, string(rec.Mode), string(rec.Status), string(pj), planJSON, string(ej), rec.CreatedAt.Unix(), finished)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return s.events.Append(ctx, syncx.JobSaved, rec.ID, map[string]any{
		"status":   rec.Status,
		"progress": rec.Progress,
	})
}

func (s *SQLStore) SaveResult(ctx context.Context, jobID string, seq int, r marking.DocumentResult) error {
	rj, err := json.Marshal(r)
	if err != nil {
		return err
	}
	var pct sql.NullInt64
	if r.Percentage != nil {
		pct = sql.NullInt64{Int64: int64(*r.Percentage), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO marking_results (job_id,seq,document_id,label,percentage,grade,error,result_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (job_id, seq) DO UPDATE SET result_json=EXCLUDED.result_json, percentage=EXCLUDED.percentage,
		  grade=EXCLUDED.grade, error=EXCLUDED.error`,
		jobID, seq, r.DocumentID, r.Label, pct, r.Grade, r.Error, string(rj), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return s.events.Append(ctx, syncx.DocumentMarked, jobID, map[string]any{
		"seq":         seq,
		"document_id": r.DocumentID,
		"percentage":  r.Percentage,
		"failed":      r.Error != "",
	})
}

func (s *SQLStore) GetJob(ctx context.Context, id string) (marking.JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,mode,status,progress_json,plan_json,errors_json,created_at,finished_at
		FROM marking_jobs WHERE id=$1`, id)
	var (
		rec                      marking.JobRecord
		mode, status             string
		pj, planJSON, errorsJSON string
		created                  int64
		finished                 sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &mode, &status, &pj, &planJSON, &errorsJSON, &created, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return marking.JobRecord{}, ErrNotFound
		}
		return marking.JobRecord{}, err
	}
	rec.Mode, rec.Status = marking.Mode(mode), marking.Status(status)
	rec.CreatedAt = time.Unix(created, 0).UTC()
	if finished.Valid {
		t := time.Unix(finished.Int64, 0).UTC()
		rec.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(pj), &rec.Progress); err != nil {
		return marking.JobRecord{}, err
	}
	if planJSON != "" {
		var p batch.Plan
		if err := json.Unmarshal([]byte(planJSON), &p); err != nil {
			return marking.JobRecord{}, err
		}
		rec.Plan = &p
	}
	if err := json.Unmarshal([]byte(errorsJSON), &rec.Errors); err != nil {
		return marking.JobRecord{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT result_json FROM marking_results WHERE job_id=$1 ORDER BY seq`, id)
	if err != nil {
		return marking.JobRecord{}, err
	}
	defer rows.Close()
	rec.Results = []marking.DocumentResult{}
	for rows.Next() {
		var rj string
		if err := rows.Scan(&rj); err != nil {
			return marking.JobRecord{}, err
		}
		var r marking.DocumentResult
		if err := json.Unmarshal([]byte(rj), &r); err != nil {
			return marking.JobRecord{}, err
		}
		rec.Results = append(rec.Results, r)
	}
	return rec, rows.Err()
}

func (s *SQLStore) ListJobs(ctx context.Context, opts ListOpts) ([]Summary, error) {
	q := `SELECT id,mode,status,progress_json,created_at FROM marking_jobs`
	args := []any{}
	if opts.Status != "" {
		q += ` WHERE status=$1`
		args = append(args, string(opts.Status))
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT %d OFFSET %d`, clampLimit(opts.Limit), max(opts.Offset, 0))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var (
			sm           Summary
			mode, status string
			pj           string
		)
		if err := rows.Scan(&sm.ID, &mode, &status, &pj, &sm.CreatedAt); err != nil {
			return nil, err
		}
		sm.Mode, sm.Status = marking.Mode(mode), marking.Status(status)
		if err := json.Unmarshal([]byte(pj), &sm.Progress); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Events exposes the event log written alongside jobs.
func (s *SQLStore) Events() *syncx.EventRepo { return s.events }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ Store = (*SQLStore)(nil)
