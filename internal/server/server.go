package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"jsonblob/internal/blob"
)

const (
	allowRemoteEnvKey = "JSONBLOB_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
)

// Options carries server wiring that is not part of the manager itself.
type Options struct {
	Engine          string
	Version         string
	CacheEnabled    bool
	AdminTokenHash  string
	MetricsRegistry *prometheus.Registry
}

// Server wraps HTTP handlers for the jsonblob API.
type Server struct {
	addr           string
	manager        *blob.Manager
	logger         *slog.Logger
	engine         string
	version        string
	cacheEnabled   bool
	adminTokenHash string
	metrics        *prometheus.Registry
	httpServer     *http.Server
}

// New creates a new server instance.
func New(addr string, manager *blob.Manager, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		addr:           addr,
		manager:        manager,
		logger:         logger,
		engine:         opts.Engine,
		version:        opts.Version,
		cacheEnabled:   opts.CacheEnabled,
		adminTokenHash: strings.TrimSpace(opts.AdminTokenHash),
		metrics:        opts.MetricsRegistry,
	}
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return srv
}

// ListenAndServe starts the HTTP server and blocks until Shutdown is called
// or the listener fails. A Shutdown-initiated stop is not an error.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr, "engine", s.engine)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting new connections and drains in-flight requests,
// bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
