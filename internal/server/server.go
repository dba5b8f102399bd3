// Package server exposes the analysis engine as a JSON-over-HTTP service.
//
//	POST /analyze       run one analysis request
//	POST /fast/tangent  tangent estimate from a posted series
//	POST /fast/riemann  Riemann rectangles from a posted series
//	GET  /schema        JSON schema of the analyze request
//	GET  /health        liveness check
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njchilds90/calctool/analysis"
	"github.com/njchilds90/calctool/internal/config"
	"github.com/njchilds90/calctool/sampling"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Server routes HTTP requests to an analysis engine.
type Server struct {
	engine *analysis.Engine
	cfg    config.ServerConfig
	logger *zap.Logger
	mux    *http.ServeMux
}

// New builds a server. A nil logger disables logging.
func New(engine *analysis.Engine, cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &Server{engine: engine, cfg: cfg, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("/analyze", s.recovered("/analyze", http.MethodPost, s.handleAnalyze))
	s.mux.HandleFunc("/fast/tangent", s.recovered("/fast/tangent", http.MethodPost, s.handleTangent))
	s.mux.HandleFunc("/fast/riemann", s.recovered("/fast/riemann", http.MethodPost, s.handleRiemann))
	s.mux.HandleFunc("/schema", s.recovered("/schema", http.MethodGet, s.handleSchema))
	s.mux.HandleFunc("/health", s.recovered("/health", http.MethodGet, s.handleHealth))
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("calctool server listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// recovered enforces the method, assigns a request id and turns a panic
// into a 500.
func (s *Server) recovered(route, method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler",
					zap.String("route", route),
					zap.String("request_id", id),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r.WithContext(analysis.WithRequestID(r.Context(), id)))
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	raw, err := s.readBody(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}
	req, err := analysis.DecodeRequest(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Analyze(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), analysis.ErrorResult(r.Context(), req, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TangentRequest asks for a fast-path tangent at T on a sampled series.
type TangentRequest struct {
	Series sampling.Series `json:"series"`
	T      float64         `json:"t"`
}

func (s *Server) handleTangent(w http.ResponseWriter, r *http.Request) {
	var req TangentRequest
	if !s.decode(w, r, &req) {
		return
	}
	tan, err := s.engine.Tangent(req.Series, req.T)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tan)
}

// RiemannRequest asks for N fast-path rectangles over [A, B].
type RiemannRequest struct {
	Series sampling.Series `json:"series"`
	A      float64         `json:"a"`
	B      float64         `json:"b"`
	N      int             `json:"n"`
}

func (s *Server) handleRiemann(w http.ResponseWriter, r *http.Request) {
	var req RiemannRequest
	if !s.decode(w, r, &req) {
		return
	}
	sum, err := s.engine.Riemann(req.Series, req.A, req.B, req.N)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analysis.RequestSchema())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// decode reads a strict JSON body into v and reports failures itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		writeError(w, http.StatusBadRequest, "invalid JSON: trailing data")
		return false
	}
	return true
}

// statusFor maps an error family to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sampling.ErrFastPathGap), errors.Is(err, sampling.ErrOutsideSeries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sampling.ErrSeriesTooShort), errors.Is(err, sampling.ErrRectangleCount):
		return http.StatusBadRequest
	}
	switch analysis.Classify(err) {
	case "parse_error":
		return http.StatusUnprocessableEntity
	case "invalid_request":
		return http.StatusBadRequest
	case "timeout":
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
