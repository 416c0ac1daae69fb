package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/mind-engage/mindengage-marker/internal/auth/middleware"
	"github.com/mind-engage/mindengage-marker/internal/db"
	"github.com/mind-engage/mindengage-marker/internal/jobs"
	"github.com/mind-engage/mindengage-marker/internal/marking"
	"github.com/mind-engage/mindengage-marker/internal/rbac"
	"github.com/mind-engage/mindengage-marker/internal/storage"
)

// router mirrors the gateway wiring on a temporary sqlite database.
func router(t *testing.T) (http.Handler, *jobs.SQLStore) {
	t.Helper()
	sqlDB, err := db.Open(context.Background(), db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	store := jobs.NewSQLStore(sqlDB)
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	local := marking.NewLocalEngine(nil)
	runner := marking.NewRunner(logs.GetLoggerFromLevel(slog.LevelDebug), store, local, marking.WithReports(bs))
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	authSvc := auth.NewAuthService("secret")

	r := chi.NewRouter()
	r.Post("/auth/login", auth.LoginHandler(authSvc,
		auth.Account{User: "admin", PassHash: string(hash), Role: rbac.RoleAdmin},
		auth.Account{User: "rev", PassHash: string(hash), Role: rbac.RoleReviewer},
	))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.With(rbac.Require(rbac.PermMarkLocal)).Post("/mark", MarkHandler(local))
		pr.With(rbac.Require(rbac.PermJob)).Post("/jobs", CreateJobHandler(runner))
		pr.With(rbac.Require(rbac.PermJobView)).Get("/events", EventsHandler(store.Events()))
	})
	r.Get("/readyz", ReadyHandler(sqlDB))
	return r, store
}

func login(t *testing.T, h http.Handler, user string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/auth/login", map[string]string{"username": user, "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["access_token"]
}

func authed(t *testing.T, h http.Handler, tok, method, path string, body any) int {
	t.Helper()
	rec := do(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
		h.ServeHTTP(w, r)
	}), method, path, body)
	return rec.Code
}

func TestRouter_AuthAndEvents(t *testing.T) {
	h, store := router(t)
	admin := login(t, h, "admin")
	rev := login(t, h, "rev")

	body := createJobReq{Documents: []marking.Document{{Text: essay}}}
	require.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/jobs", body).Code)
	require.Equal(t, http.StatusForbidden, authed(t, h, rev, http.MethodPost, "/jobs", body))
	require.Equal(t, http.StatusCreated, authed(t, h, admin, http.MethodPost, "/jobs", body))
	require.Equal(t, http.StatusForbidden, authed(t, h, rev, http.MethodPost, "/mark", markReq{Document: marking.Document{Text: essay}}))

	list, err := store.ListJobs(context.Background(), jobs.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.Equal(t, http.StatusOK, authed(t, h, rev, http.MethodGet, "/events?after=0", nil))
	evs, err := store.Events().Since(context.Background(), 0, 100)
	require.NoError(t, err)
	require.NotEmpty(t, evs)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/readyz", nil).Code)
}
