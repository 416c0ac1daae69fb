package jobs

import (
	"context"
	"sort"
	"sync"

	"github.com/mind-engage/mindengage-marker/internal/marking"
)

type memoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]marking.JobRecord
	results map[string]map[int]marking.DocumentResult
}

// NewMemoryStore keeps everything in process. Used by tests.
func NewMemoryStore() Store {
	return &memoryStore{
		jobs:    map[string]marking.JobRecord{},
		results: map[string]map[int]marking.DocumentResult{},
	}
}

func (m *memoryStore) SaveJob(_ context.Context, rec marking.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Results = nil
	m.jobs[rec.ID] = rec
	return nil
}

func (m *memoryStore) SaveResult(_ context.Context, jobID string, seq int, r marking.DocumentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jobID]; !ok {
		return ErrNotFound
	}
	if m.results[jobID] == nil {
		m.results[jobID] = map[int]marking.DocumentResult{}
	}
	m.results[jobID][seq] = r
	return nil
}

func (m *memoryStore) GetJob(_ context.Context, id string) (marking.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.jobs[id]
	if !ok {
		return marking.JobRecord{}, ErrNotFound
	}
	seqs := make([]int, 0, len(m.results[id]))
	for s := range m.results[id] {
		seqs = append(seqs, s)
	}
	sort.Ints(seqs)
	rec.Results = make([]marking.DocumentResult, 0, len(seqs))
	for _, s := range seqs {
		rec.Results = append(rec.Results, m.results[id][s])
	}
	return rec, nil
}

func (m *memoryStore) ListJobs(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.jobs))
	for _, j := range m.jobs {
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		out = append(out, Summary{ID: j.ID, Mode: j.Mode, Status: j.Status, Progress: j.Progress, CreatedAt: j.CreatedAt.Unix()})
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt != out[k].CreatedAt {
			return out[i].CreatedAt > out[k].CreatedAt
		}
		return out[i].ID < out[k].ID
	})
	off := max(opts.Offset, 0)
	if off >= len(out) {
		return []Summary{}, nil
	}
	out = out[off:]
	if l := clampLimit(opts.Limit); len(out) > l {
		out = out[:l]
	}
	return out, nil
}
