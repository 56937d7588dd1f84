/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package preview serves a page with the tracker widget and reloads open
// browsers whenever the file changes on disk. It only serves files; every
// countdown runs in the browser.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/friendsincode/d4events/internal/events"
	"github.com/friendsincode/d4events/internal/inject"
	"github.com/friendsincode/d4events/internal/telemetry"
)

// Options configure the preview server.
type Options struct {
	File            string
	Addr            string
	RateLimitPerSec int
	CORSOrigins     []string
	Debounce        time.Duration
	// Injections are spliced into the page in memory before it is served.
	Injections []inject.Injection
}

// Server bundles the HTTP router, the reload hub and the file watcher.
type Server struct {
	opts       Options
	page       string
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	bus        *events.Bus
	closers    []func() error

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server. The page file must exist.
func New(opts Options, bus *events.Bus, logger zerolog.Logger) (*Server, error) {
	page, err := filepath.Abs(opts.File)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.File, err)
	}
	info, err := os.Stat(page)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", page, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", page)
	}
	if opts.RateLimitPerSec <= 0 {
		opts.RateLimitPerSec = 50
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 150 * time.Millisecond
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("d4events-preview"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(httprate.LimitByIP(opts.RateLimitPerSec, time.Second))

	s := &Server{
		opts:   opts,
		page:   page,
		logger: logger.With().Str("component", "preview").Logger(),
		router: router,
		bus:    bus,
	}
	s.configureRoutes()

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		// WriteTimeout stays 0 so reload sockets are not cut off.
		IdleTimeout: 60 * time.Second,
	}
	return s, nil
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and stops the watcher.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.startBackgroundWorkers(); err != nil {
		ln.Close()
		return err
	}
	defer s.Close()

	s.logger.Info().
		Str("addr", "http://"+ln.Addr().String()+"/").
		Str("file", s.page).
		Msg("preview server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("preview shutdown incomplete")
		return s.httpServer.Close()
	}
	return nil
}

// Close stops background workers and releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Reload tells every connected browser to reload.
func (s *Server) Reload(reason string) {
	telemetry.PreviewReloadsTotal.Inc()
	s.bus.Publish(events.EventPreviewReload, time.Now(), reloadEvent{Reason: reason})
}

func (s *Server) startBackgroundWorkers() error {
	w, err := newWatcher(s.page, s.opts.Debounce, s.Reload, s.logger)
	if err != nil {
		return err
	}
	s.DeferClose(w.Close)

	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		w.Run(ctx)
	}()
	return nil
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Handle("/metrics", telemetry.Handler())
	s.router.Get("/ws/reload", s.handleReload)

	s.router.Get("/", s.handlePage)
	s.router.Get("/"+filepath.Base(s.page), s.handlePage)
	s.router.Handle("/*", http.FileServer(http.Dir(filepath.Dir(s.page))))
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Content-Security-Policy", "default-src 'self' 'unsafe-inline' data: blob: https: http:; connect-src 'self' ws: wss:; frame-ancestors 'self'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// pageInjection appends the reload client to the served page.
var pageInjection = inject.Injection{
	Name:      "live_reload",
	Marker:    inject.MarkerBodyClose,
	Block:     reloadSnippet,
	Placement: inject.Before,
	Signature: reloadSignature,
}
