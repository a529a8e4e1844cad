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

	"github.com/matzehuels/spoom/pkg/autoload"
	"github.com/matzehuels/spoom/pkg/cache"
	"github.com/matzehuels/spoom/pkg/errors"
	"github.com/matzehuels/spoom/pkg/observability"
	"github.com/matzehuels/spoom/pkg/source"
)

// serveCommand creates the command that answers index queries over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the autoload index over HTTP",
		Long: `Serve the index and symbol resolution over HTTP:

  GET /healthz                 liveness probe
  GET /index                   index entries in lookup order
  GET /resolve?symbol=NAME     resolve NAME and report its file
  GET /stats                   index and resolve counters

The index file is re-read on every request, so a "spoom dump" in
another process is visible immediately. The table cache only saves
decoding an unchanged file again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			ws, err := c.openWorkspace()
			if err != nil {
				return err
			}
			tables, err := c.openCache(ctx, ws.config)
			if err != nil {
				return err
			}
			defer tables.Close()

			counters := observability.NewCounters()
			observability.SetIndexHooks(counters)
			observability.SetResolveHooks(counters)
			defer observability.Reset()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(ws, tables, counters, logger).routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			printInfo("Listening on http://%s", addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

// server holds the state shared by HTTP handlers.
type server struct {
	ws      *workspace
	tables  cache.Cache
	runtime *source.Runtime
	stats   *observability.Counters
	logger  *log.Logger
}

func newServer(ws *workspace, tables cache.Cache, stats *observability.Counters, logger *log.Logger) *server {
	return &server{
		ws:      ws,
		tables:  tables,
		runtime: source.NewRuntime(logger),
		stats:   stats,
		logger:  logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/index", s.handleIndex)
	r.Get("/resolve", s.handleResolve)
	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.stats.Snapshot())
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
		)
	})
}

func (s *server) table(ctx context.Context) (*autoload.Table, error) {
	return autoload.ReadTable(ctx, s.ws.indexPath(), s.tables, s.ws.config.Cache.TTL.Duration, s.logger)
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type resolveResponse struct {
	Symbol   string   `json:"symbol"`
	Resolved bool     `json:"resolved"`
	File     string   `json:"file,omitempty"`
	Attempts []string `json:"attempts,omitempty"`
}

func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "missing symbol parameter"))
		return
	}

	t, err := s.table(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	res := autoload.New(t, s.runtime, s.runtime, s.ws.resolverOptions(s.tables, s.logger)...)

	ok, err := res.Resolve(symbol)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := resolveResponse{Symbol: symbol, Resolved: ok}
	if ok {
		resp.File, _ = s.runtime.Origin(symbol)
	} else if r.URL.Query().Has("explain") {
		resp.Attempts = res.Attempts(symbol)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeIndexNotFound, errors.ErrCodeIndexInvalid:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}
