package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Defaults applied to any Config knob left at its zero value.
const (
	defaultPort              = "8080"
	defaultMaxHeaderBytes    = 1 << 20 // 1 MB
	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// Config carries the HTTP listener knobs (the http.* section of
// config.yml). Write timeouts stop applying to /ws once the connection is
// hijacked for the upgrade.
type Config struct {
	Port              string
	MaxHeaderBytes    int
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	return c
}

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	httpServer *http.Server
}

// normalizeAddr accepts "8080" or ":8080".
func normalizeAddr(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Run starts the HTTP server with the given config and handler. Blocks
// until the listener fails or Shutdown is called.
func (s *Server) Run(cfg Config, handler http.Handler) error {
	cfg = cfg.withDefaults()
	s.httpServer = &http.Server{
		Addr:              normalizeAddr(cfg.Port),
		Handler:           handler,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
