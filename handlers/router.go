package handlers

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *ReadingHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", HealthCheck).Methods("GET")
	r.HandleFunc("/readings", h.HandleReading).Methods("POST")
	r.HandleFunc("/readings/analyze", h.HandleAnalyzeReading).Methods("POST")
	r.HandleFunc("/analysis", h.HandleAnalysis).Methods("GET")
	r.HandleFunc("/analysis/recent", h.HandleRecentAnalyses).Methods("GET")

	r.Path("/metrics").Handler(promhttp.Handler())

	return r
}
