package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tristendillon/govgen/core/analyzer"
	"github.com/tristendillon/govgen/core/catalog"
	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/config"
	"github.com/tristendillon/govgen/core/generator"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/rpc"
	"github.com/tristendillon/govgen/core/scanner"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Config   *config.Config
	analyzer *analyzer.Analyzer
	fetcher  analyzer.ModuleFetcher
}

func NewServer(cfg *config.Config, fetcher analyzer.ModuleFetcher) *Server {
	gen := generator.NewGovernanceGenerator()
	if cfg.Codegen.ModuleSuffix != "" {
		gen.ModuleSuffix = cfg.Codegen.ModuleSuffix
	}
	if fetcher == nil {
		fetcher = rpc.NewClient(cfg.RPC.URL, cfg.RPC.Timeout)
	}
	return &Server{
		Config:   cfg,
		analyzer: analyzer.New(cfg.Vocabulary(), gen),
		fetcher:  fetcher,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /api/analyze", s.analyze)
	mux.HandleFunc("POST /api/discover", s.discover)
	mux.HandleFunc("POST /api/fetch", s.fetch)
	return logRequests(mux)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type analyzeRequest struct {
	Source    string   `json:"source"`
	Mode      string   `json:"mode"`
	Functions []string `json:"functions,omitempty"`
}

type fetchRequest struct {
	Package string `json:"package"`
	Module  string `json:"module"`
	Mode    string `json:"mode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyze generates from source. A non-empty functions list bypasses
// classification.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}

	if len(req.Functions) > 0 {
		result, err := s.analyzer.FromSelection(req.Source, req.Functions)
		respond(w, result, err)
		return
	}

	mode, err := s.mode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.analyzer.FromSource(req.Source, mode)
	respond(w, result, err)
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.analyzer.DiscoverEntryPoints(req.Source)
	respond(w, result, err)
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Package == "" || req.Module == "" {
		writeError(w, http.StatusBadRequest, errors.New("package and module are required"))
		return
	}
	mode, err := s.mode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.analyzer.FromChain(r.Context(), s.fetcher, req.Package, req.Module, mode)
	respond(w, result, err)
}

func (s *Server) mode(raw string) (classifier.Mode, error) {
	if raw == "" {
		return s.Config.Mode(), nil
	}
	return classifier.ParseMode(raw)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func statusFor(err error) int {
	var fetchErr *rpc.FetchError
	switch {
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, scanner.ErrModuleNotFound),
		errors.Is(err, generator.ErrNoGovernableActions),
		errors.Is(err, generator.ErrTooManyActions),
		errors.Is(err, catalog.ErrDuplicateAction),
		errors.Is(err, catalog.ErrVariantCollision),
		errors.Is(err, analyzer.ErrUnknownFunction),
		errors.Is(err, analyzer.ErrEmptyDescriptor):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
