package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mama165/sdk-go/logs"

	api "github.com/mind-engage/mindengage-marker/internal/api/http"
	auth "github.com/mind-engage/mindengage-marker/internal/auth/middleware"
	"github.com/mind-engage/mindengage-marker/internal/config"
	"github.com/mind-engage/mindengage-marker/internal/db"
	"github.com/mind-engage/mindengage-marker/internal/jobs"
	"github.com/mind-engage/mindengage-marker/internal/llm"
	"github.com/mind-engage/mindengage-marker/internal/marking"
	rbac "github.com/mind-engage/mindengage-marker/internal/rbac"
	storage "github.com/mind-engage/mindengage-marker/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	// --- DB ---
	openCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db open failed: %w", err)
	}
	defer dbh.Close()
	store := jobs.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	// --- Marking ---
	local := marking.NewLocalEngine(nil)
	remote, err := cfg.RemoteEngine(log)
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Warn("LLM_API_KEY not set, remote marking disabled")
	case err != nil:
		return fmt.Errorf("llm client: %w", err)
	}
	runnerOpts := []marking.RunnerOption{
		marking.WithReports(bs),
		marking.WithInterDocumentDelay(cfg.InterDocumentDelay),
	}
	if remote != nil {
		runnerOpts = append(runnerOpts, marking.WithRemote(remote))
	}
	runner := marking.NewRunner(log, store, local, runnerOpts...)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	checker := rbac.NewChecker(nil)
	if cfg.Mode == config.ModeRemote {
		checker.Grant(rbac.RoleTeacher, rbac.PermMarkRemote)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, auth.Account{
		User:     cfg.AdminUser,
		PassHash: cfg.AdminPassHash,
		Role:     rbac.RoleAdmin,
	}))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Heuristic marking is fast; keep the request timeout.
		pr.Group(func(fr chi.Router) {
			fr.Use(middleware.Timeout(30 * time.Second))
			fr.With(checker.Require(rbac.PermMarkLocal)).
				Post("/mark", api.MarkHandler(local))
			fr.With(checker.Require(rbac.PermMarkLocal)).
				Post("/mark/upload", api.UploadMarkHandler(local))
			fr.With(checker.Require(rbac.PermPlan)).
				Post("/batches/plan", api.PlanHandler(runner.Advisor()))
			fr.With(checker.RequireAny(rbac.PermJob, rbac.PermJobView)).
				Get("/jobs", api.ListJobsHandler(store))
			fr.With(checker.RequireAny(rbac.PermJob, rbac.PermJobView)).
				Get("/jobs/{jobID}", api.GetJobHandler(store))
			fr.With(checker.Require(rbac.PermJobView)).
				Get("/events", api.EventsHandler(store.Events()))
		})

		// Remote calls pace and retry for minutes.
		pr.With(checker.Require(rbac.PermMarkRemote)).
			Post("/mark/remote", api.RemoteMarkHandler(remote))
		pr.With(checker.Require(rbac.PermJob)).
			Post("/jobs", api.CreateJobHandler(runner))
	})

	r.Get("/healthz", api.HealthHandler())
	r.Get("/readyz", api.ReadyHandler(dbh))

	// --- Serve ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("Listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "remote", remote != nil)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("Shutting down")
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShut()
	return srv.Shutdown(shutCtx)
}
