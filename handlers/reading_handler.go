package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"vitals-monitor/analytics"
	"vitals-monitor/models"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	anomaliesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anomalies_detected_total",
			Help: "Total number of anomalies detected",
		},
		[]string{"type", "severity"},
	)

	analysisStatusTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_status_total",
			Help: "Total number of anomalous analyses by resulting status",
		},
		[]string{"status"},
	)
)

const defaultRecentLimit = 10

type ReadingProcessor interface {
	ProcessReading(reading models.Reading) error
	Analyze(ctx context.Context, reading models.Reading) (models.AnalysisResult, error)
}

type AnalysisReader interface {
	GetAnalysis(ctx context.Context, userID string) (*models.AnalysisResult, error)
	GetRecentAnalyses(ctx context.Context, userID string, limit int) ([]models.AnalysisResult, error)
}

// RecordAnomalies is meant to be passed to the engine as its anomaly callback.
func RecordAnomalies(result models.AnalysisResult) {
	analysisStatusTotal.WithLabelValues(string(result.Status)).Inc()
	for _, a := range result.Anomalies {
		anomaliesDetectedTotal.WithLabelValues(string(a.Type), a.Severity.String()).Inc()
	}
}

type ReadingHandler struct {
	processor ReadingProcessor
	store     AnalysisReader
	logger    *zap.Logger
}

func NewReadingHandler(processor ReadingProcessor, store AnalysisReader, logger *zap.Logger) *ReadingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadingHandler{
		processor: processor,
		store:     store,
		logger:    logger,
	}
}

func (h *ReadingHandler) decodeReading(w http.ResponseWriter, r *http.Request) (models.Reading, bool) {
	var reading models.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid JSON format")
		return reading, false
	}

	if err := reading.Validate(); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return reading, false
	}
	return reading, true
}

func (h *ReadingHandler) HandleReading(w http.ResponseWriter, r *http.Request) {
	defer observe(r, time.Now())

	reading, ok := h.decodeReading(w, r)
	if !ok {
		return
	}

	if err := h.processor.ProcessReading(reading); err != nil {
		h.failProcessing(w, r, err)
		return
	}

	h.respond(w, r, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"user_id": reading.Subject(),
	})
}

func (h *ReadingHandler) HandleAnalyzeReading(w http.ResponseWriter, r *http.Request) {
	defer observe(r, time.Now())

	reading, ok := h.decodeReading(w, r)
	if !ok {
		return
	}

	result, err := h.processor.Analyze(r.Context(), reading)
	if err != nil {
		h.failProcessing(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result)
}

func (h *ReadingHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	defer observe(r, time.Now())

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.fail(w, r, http.StatusBadRequest, "user_id parameter is required")
		return
	}

	result, err := h.store.GetAnalysis(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get analysis", zap.String("user_id", userID), zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, "Failed to get analysis: "+err.Error())
		return
	}
	if result == nil {
		h.fail(w, r, http.StatusNotFound, "no analysis for user "+userID)
		return
	}

	h.respond(w, r, http.StatusOK, result)
}

func (h *ReadingHandler) HandleRecentAnalyses(w http.ResponseWriter, r *http.Request) {
	defer observe(r, time.Now())

	query := r.URL.Query()
	userID := query.Get("user_id")
	if userID == "" {
		h.fail(w, r, http.StatusBadRequest, "user_id parameter is required")
		return
	}

	limit := defaultRecentLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.store.GetRecentAnalyses(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to get recent analyses", zap.String("user_id", userID), zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, "Failed to get recent analyses: "+err.Error())
		return
	}

	h.respond(w, r, http.StatusOK, results)
}

func (h *ReadingHandler) failProcessing(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.fail(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrQueueFull), errors.Is(err, analytics.ErrEngineClosed):
		h.fail(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.fail(w, r, http.StatusGatewayTimeout, err.Error())
	default:
		h.logger.Error("failed to process reading", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, err.Error())
	}
}

func (h *ReadingHandler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(status)).Inc()
	http.Error(w, msg, status)
}

func (h *ReadingHandler) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
	httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(status)).Inc()
}

func observe(r *http.Request, start time.Time) {
	requestDurationSeconds.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
