package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-marker/internal/jobs"
	"github.com/mind-engage/mindengage-marker/internal/marking"
	syncx "github.com/mind-engage/mindengage-marker/internal/sync"
)

type createJobReq struct {
	Mode      marking.Mode       `json:"mode"`
	Documents []marking.Document `json:"documents"`
	Memo      string             `json:"memo,omitempty"`
}

// POST /jobs runs the job to completion before answering.
func CreateJobHandler(runner *marking.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createJobReq
		if !decode(w, r, &req) {
			return
		}
		if req.Mode == "" {
			req.Mode = marking.ModeLocal
		}
		j := marking.NewJob(req.Mode, req.Documents, req.Memo)
		if err := runner.Run(r.Context(), j); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, j.Record())
	}
}

// GET /jobs/{jobID}
func GetJobHandler(store jobs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "jobID"))
		if id == "" {
			http.Error(w, "jobID required", http.StatusBadRequest)
			return
		}
		rec, err := store.GetJob(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// GET /jobs?status=&limit=&offset=
func ListJobsHandler(store jobs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		list, err := store.ListJobs(r.Context(), jobs.ListOpts{
			Status: marking.Status(q.Get("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list})
	}
}

// GET /events?after=&limit=
func EventsHandler(repo *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		evs, err := repo.Since(r.Context(), after, limit)
		if err != nil {
			http.Error(w, "events: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": evs})
	}
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
}

// ReadyHandler reports 503 until the database answers.
func ReadyHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
