package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Blob CRUD.
	mux.HandleFunc("POST /api/jsonBlob", s.handleCreateBlob)
	mux.HandleFunc("GET /api/jsonBlob/{id}", s.handleGetBlob)
	mux.HandleFunc("PUT /api/jsonBlob/{id}", s.handleUpdateBlob)
	mux.HandleFunc("DELETE /api/jsonBlob/{id}", s.handleDeleteBlob)

	// Admin.
	mux.HandleFunc("POST /v1/admin/cleanup", s.handleAdminCleanup)

	// Telemetry.
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}

	return s.withRequestLogging(mux)
}
