package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/flipchain/flipchain/pkg/cache"
	"github.com/flipchain/flipchain/pkg/errors"
	"github.com/flipchain/flipchain/pkg/run"
	"github.com/flipchain/flipchain/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	cacheDir string // file cache directory (used when --redis is unset)
	redis    string // redis URL for the shared cache
	mongo    string // mongodb URI for run storage
	mongoDB  string // mongodb database name
}

// newServeCmd creates the serve command for the HTTP API.
//
// Backends:
//   - cache: file cache by default, Redis with --redis
//   - store: in-memory by default, MongoDB with --mongo
func newServeCmd() *cobra.Command {
	opts := serveOpts{
		addr:     ":8080",
		cacheDir: defaultCacheDir(),
		mongoDB:  "flipchain",
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve exposes chain execution over HTTP. POST /runs starts a run and
returns its history; completed runs are persisted and retrievable by ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", opts.cacheDir, "file cache directory")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis URL, e.g. redis://localhost:6379/0")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "mongodb URI, e.g. mongodb://localhost:27017")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "mongodb database name")

	return cmd
}

// runServe assembles the backends and serves until the context is cancelled.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	var (
		c   cache.Cache
		err error
	)
	if opts.redis != "" {
		c, err = cache.NewRedisCache(ctx, opts.redis)
		logger.Info("using redis cache", "url", opts.redis)
	} else {
		c, err = cache.NewFileCache(opts.cacheDir)
	}
	if err != nil {
		return err
	}

	var st store.Store
	if opts.mongo != "" {
		st, err = store.NewMongoStore(ctx, opts.mongo, opts.mongoDB)
		if err != nil {
			return err
		}
		logger.Info("using mongodb store", "db", opts.mongoDB)
	} else {
		st = store.NewMemoryStore()
		logger.Warn("using in-memory store, runs are lost on restart")
	}

	runner := run.NewRunner(c, nil, st, logger)
	defer runner.Close(context.Background())

	srv := &http.Server{
		Addr:         opts.addr,
		Handler:      newRouter(runner, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // long chains
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", opts.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// newRouter builds the API routes.
func newRouter(runner *run.Runner, logger *log.Logger) chi.Router {
	api := &apiServer{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", api.handleHealth)
	r.Post("/runs", api.handleCreateRun)
	r.Get("/runs", api.handleListRuns)
	r.Get("/runs/{id}", api.handleGetRun)

	return r
}

// apiServer carries the handler dependencies.
type apiServer struct {
	runner *run.Runner
	logger *log.Logger
}

// runResponse is the POST /runs response body.
type runResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Cached    bool      `json:"cached"`
	Steps     int       `json:"steps"`
	Names     []string  `json:"names"`
}

// runSummary is one entry of the GET /runs response.
type runSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Steps     int       `json:"steps"`
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var opts run.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Error("run failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, runResponse{
		ID:        result.ID,
		CreatedAt: result.CreatedAt,
		Cached:    result.CacheInfo.RunHit,
		Steps:     len(result.Data.Steps) - 1,
		Names:     result.Data.Names,
	})
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	recs, err := s.runner.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]runSummary, 0, len(recs))
	for _, rec := range recs {
		steps := 0
		if rec.Data != nil {
			steps = len(rec.Data.Steps) - 1
		}
		out = append(out, runSummary{ID: rec.ID, CreatedAt: rec.CreatedAt, Steps: steps})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.runner.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error code to an HTTP status and writes the body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidAssignment,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidScore, errors.ErrCodeInvalidFormat,
		errors.ErrCodeNoBoundary:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeRunNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}
