// Package server runs the HTTP facade with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keyfoundry/keybind/internal/api/router"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8443".
	Addr string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// withDefaults fills unset timeouts.
func (c *Config) withDefaults() {
	if c.Addr == "" {
		c.Addr = ":8443"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 15 * time.Second
	}
}

// Server represents the HTTP server.
type Server struct {
	cfg     *Config
	version string
}

// New creates a new Server.
func New(cfg *Config, version string) *Server {
	cfg.withDefaults()
	return &Server{cfg: cfg, version: version}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	handler := router.New(&router.Config{Version: s.version})

	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.cfg.Addr)
		errChan <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		log.Printf("received signal %v, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	log.Println("server stopped gracefully")
	return nil
}
