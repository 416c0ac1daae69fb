// Package jobs persists marking jobs and their per-document results.
package jobs

import (
	"context"
	"errors"

	"github.com/mind-engage/mindengage-marker/internal/marking"
)

var ErrNotFound = errors.New("job not found")

type ListOpts struct {
	Status marking.Status // optional filter
	Limit  int
	Offset int
}

// Summary is a job without its results.
type Summary struct {
	ID        string           `json:"id"`
	Mode      marking.Mode     `json:"mode"`
	Status    marking.Status   `json:"status"`
	Progress  marking.Progress `json:"progress"`
	CreatedAt int64            `json:"created_at"`
}

type Store interface {
	marking.Store
	GetJob(ctx context.Context, id string) (marking.JobRecord, error)
	ListJobs(ctx context.Context, opts ListOpts) ([]Summary, error)
}

func clampLimit(n int) int {
	if n <= 0 || n > 200 {
		return 50
	}
	return n
}
