// Package server exposes the SPC engine as the JSON HTTP surface of the
// MachShop quality module: configuration CRUD per parameter, analysis,
// and violation history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/machshop/spc"
	"github.com/machshop/spc/pkg/capability"
	"github.com/machshop/spc/pkg/chart"
	"github.com/machshop/spc/pkg/rules"
	"github.com/machshop/spc/pkg/series"
	"github.com/machshop/spc/publish"
	"github.com/machshop/spc/store"
)

// Server wires the stateless engine to its external collaborators: the
// configuration store, the violation sink, and an optional publisher.
type Server struct {
	store   store.Store
	pub     publish.Publisher
	schema  analyzeValidator
	errors  ErrorReporter
	log     *slog.Logger
}

type analyzeValidator func(raw []byte) error

// Option adjusts server construction
type Option func(s *Server)

// WithPublisher fans detected violations out to the given publisher in
// the background
func WithPublisher(p publish.Publisher) Option {
	return func(s *Server) {
		s.pub = p
	}
}

// WithErrorReporter replaces the default rollbar reporter
func WithErrorReporter(r ErrorReporter) Option {
	return func(s *Server) {
		s.errors = r
	}
}

// New creates a server over the given store
func New(st store.Store, log *slog.Logger, opts ...Option) (*Server, error) {
	schema, err := compileAnalyzeSchema()
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:  st,
		errors: NewRollbarReporter(),
		log:    log.With(slog.String("component", "spc-server")),
		schema: func(raw []byte) error {
			return validateAgainstSchema(schema, raw)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Routes returns the HTTP handler for the SPC API
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/v1/spc/configs/{parameterId}", s.instrument("/api/v1/spc/configs", s.handlePutConfig))
	mux.HandleFunc("GET /api/v1/spc/configs/{parameterId}", s.instrument("/api/v1/spc/configs", s.handleGetConfig))
	mux.HandleFunc("POST /api/v1/spc/configs/{parameterId}/deactivate", s.instrument("/api/v1/spc/configs/deactivate", s.handleDeactivate))
	mux.HandleFunc("GET /api/v1/spc/configs/{parameterId}/violations", s.instrument("/api/v1/spc/violations", s.handleViolations))
	mux.HandleFunc("POST /api/v1/spc/analyze", s.instrument("/api/v1/spc/analyze", s.handleAnalyze))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		httpRequests.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
	}
}

type errorBody struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// category maps engine errors onto the machine-readable categories the
// UI keys its user messaging on.  Anything unmapped is a defect, not an
// expected outcome, and is reported out of band.
func category(err error) (int, string) {
	switch {
	case errors.Is(err, spc.ErrEmptyData) || errors.Is(err, rules.ErrEmptyData):
		return http.StatusBadRequest, "EmptyData"
	case errors.Is(err, chart.ErrInsufficientData),
		errors.Is(err, capability.ErrInsufficientData),
		errors.Is(err, chart.ErrDegenerateSeries),
		errors.Is(err, capability.ErrDegenerateSeries):
		return http.StatusBadRequest, "InsufficientData"
	case errors.Is(err, chart.ErrUnsupportedSubgroupSize):
		return http.StatusBadRequest, "UnsupportedSubgroupSize"
	case errors.Is(err, chart.ErrInvalidSpecLimits) || errors.Is(err, capability.ErrInvalidSpecLimits):
		return http.StatusBadRequest, "InvalidLimits"
	case errors.Is(err, capability.ErrMissingSpecLimits):
		return http.StatusBadRequest, "MissingSpecLimits"
	case errors.Is(err, spc.ErrInvalidConfiguration):
		return http.StatusBadRequest, "InvalidConfiguration"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NotFound"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, cat := category(err)
	if status == http.StatusInternalServerError {
		s.errors.ReportError(err)
		s.log.Error("internal error", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Category: cat, Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	parameterID := r.PathValue("parameterId")

	var cfg spc.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed configuration body: %v", spc.ErrInvalidConfiguration, err))
		return
	}
	cfg.ParameterID = parameterID
	if errs := cfg.Validate(); len(errs) > 0 {
		s.writeError(w, fmt.Errorf("%w: %w", spc.ErrInvalidConfiguration, errors.Join(errs...)))
		return
	}
	if err := s.store.SaveConfig(r.Context(), &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.GetConfig(r.Context(), r.PathValue("parameterId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	parameterID := r.PathValue("parameterId")
	if err := s.store.Deactivate(r.Context(), parameterID); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("configuration deactivated", slog.String("parameter", parameterID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			s.writeError(w, fmt.Errorf("%w: limit must be a positive integer", spc.ErrInvalidConfiguration))
			return
		}
		limit = n
	}
	records, err := s.store.RecentViolations(r.Context(), r.PathValue("parameterId"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

type analyzeRequest struct {
	ParameterID string         `json:"parameterId"`
	Data        []series.Point `json:"data,omitempty"`
	Samples     []chart.Sample `json:"samples,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: failed to read request body: %v", spc.ErrInvalidConfiguration, err))
		return
	}
	if err := s.schema(raw); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", spc.ErrInvalidConfiguration, err))
		return
	}
	var req analyzeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", spc.ErrInvalidConfiguration, err))
		return
	}

	cfg, err := s.store.GetConfig(r.Context(), req.ParameterID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !cfg.Active {
		s.writeError(w, fmt.Errorf("%w: configuration for %s is deactivated", spc.ErrInvalidConfiguration, req.ParameterID))
		return
	}

	start := time.Now()
	result, err := s.analyze(cfg, req)
	analysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		analysesTotal.WithLabelValues(string(cfg.Chart), "error").Inc()
		s.writeError(w, err)
		return
	}
	analysesTotal.WithLabelValues(string(cfg.Chart), "ok").Inc()
	for _, v := range result.Violations {
		violationsDetected.WithLabelValues(strconv.Itoa(v.Rule), string(v.Severity)).Inc()
	}

	s.persistViolations(r.Context(), cfg, result.Violations)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) analyze(cfg *spc.Config, req analyzeRequest) (*spc.Result, error) {
	if len(req.Samples) > 0 {
		return spc.AnalyzeSamples(cfg, req.Samples)
	}
	data, err := series.New(series.WithPoints(req.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", spc.ErrInvalidConfiguration, err)
	}
	return spc.Analyze(cfg, data)
}

// persistViolations writes the sink synchronously and publishes in the
// background; a slow broker must not hold the response
func (s *Server) persistViolations(ctx context.Context, cfg *spc.Config, violations []rules.Violation) {
	if len(violations) == 0 {
		return
	}
	records := store.NewRecords(cfg.ParameterID, cfg.Sensitivity, time.Now().UTC(), violations)
	if err := s.store.SaveViolations(ctx, records); err != nil {
		s.errors.ReportError(err)
		s.log.Error("failed to persist violations",
			slog.String("parameter", cfg.ParameterID),
			slog.String("error", err.Error()))
	}
	if s.pub == nil {
		return
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.pub.Publish(pctx, records); err != nil {
			s.errors.ReportError(err)
			s.log.Error("failed to publish violations",
				slog.String("parameter", cfg.ParameterID),
				slog.String("error", err.Error()))
		}
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
