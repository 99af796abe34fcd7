// File: internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/codetriage/api/schemas"
	"github.com/xkilldash9x/codetriage/internal/config"
	"github.com/xkilldash9x/codetriage/internal/orchestrator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Pinger reports whether the external detector is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the thin HTTP surface over the orchestrator and the artifact
// store. It owns no business logic; every handler delegates and maps errors
// to status codes. A missing artifact or task is a 404, never a 500.
type Server struct {
	cfg   *config.Config
	log   *zap.Logger
	orch  *orchestrator.Orchestrator
	det   schemas.Detector
	store schemas.ArtifactStore
	ping  Pinger

	httpServer *http.Server
}

// New wires the HTTP surface. ping may be nil when the detector offers no
// health probe.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	orch *orchestrator.Orchestrator,
	det schemas.Detector,
	store schemas.ArtifactStore,
	ping Pinger,
) (*Server, error) {
	if cfg == nil || logger == nil || orch == nil || det == nil || store == nil {
		return nil, fmt.Errorf("cannot initialize server with nil dependencies")
	}

	s := &Server{
		cfg:   cfg,
		log:   logger.Named("server"),
		orch:  orch,
		det:   det,
		store: store,
		ping:  ping,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/detection/submit", s.handleSubmit)
	mux.HandleFunc("GET /api/v1/detection/rules", s.handleRules)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.handleTaskStatus)
	mux.HandleFunc("GET /api/v1/reports/{id}", s.handleNarrative)
	mux.HandleFunc("GET /api/v1/structured-data/{id}", s.handlePayload)
	return mux
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until the context is cancelled, then drains connections within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		s.log.Info("HTTP server shutting down")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// -- Handlers --

type submitRequest struct {
	FilePath     string                 `json:"file_path"`
	AnalysisType schemas.AnalysisType   `json:"analysis_type"`
	Options      *schemas.DetectOptions `json:"options"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.AnalysisType == "" {
		req.AnalysisType = schemas.AnalysisFile
	}
	opts := schemas.DefaultDetectOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	handle, err := s.orch.Submit(r.Context(), req.FilePath, req.AnalysisType, opts)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, "analysis accepted", map[string]string{
		"task_id": handle.TaskID,
	})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.det.TaskStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err, http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, "task status", task)
}

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Narrative(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Payload(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.det.DetectionRules(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, "detection rules", rules)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if s.ping != nil {
		if err := s.ping.Ping(r.Context()); err != nil {
			s.log.Warn("Detector health probe failed", zap.Error(err))
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, code, "health", map[string]string{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// -- Response helpers --

type responseEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(responseEnvelope{Message: message, Data: data}); err != nil {
		s.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		s.log.Error("Failed to encode error response", zap.Error(encErr))
	}
}

// writeLookupError maps a lookup failure to a status code. Absence is client
// facing and never reported as a server fault.
func (s *Server) writeLookupError(w http.ResponseWriter, err error, fallback int) {
	if errors.Is(err, schemas.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, fallback, err)
}
