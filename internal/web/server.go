// Package web provides the JSON HTTP API of the inventory back-office.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/inventario/internal/config"
	"github.com/JonMunkholm/inventario/internal/core"
	mw "github.com/JonMunkholm/inventario/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports database reachability for the health check.
// Satisfied by *store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the inventory API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	db      Pinger
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server with its middleware and routes.
func NewServer(service *core.Service, cfg *config.Config, db Pinger) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		db:      db,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json", "text/csv"))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(mw.NewIPRateLimiter(s.cfg.Rate.RequestsPerMinute).Handler)
	}
}

// setupRoutes configures all HTTP routes.
//
// Import and preview sit outside the request timeout: an import runs to
// completion once started and is bounded by IMPORT_TIMEOUT instead.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(mw.NewIPRateLimiter(s.cfg.Rate.ImportLimit).Handler)
			}
			r.Post("/inventory/import", s.handleImport)
			r.Post("/inventory/preview", s.handlePreview)
		})

		r.Group(func(r chi.Router) {
			if s.cfg.Server.RequestTimeout > 0 {
				r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
			}

			r.Get("/inventory/export", s.handleExport)
			r.Get("/inventory/imports/status", s.handleImportStatus)

			r.Get("/products", s.handleListProducts)
			r.Get("/products/{id}/stock-history", s.handleStockHistory)
			r.Post("/products/{id}/stock", s.handleAdjustStock)
			r.Post("/products/bulk-price", s.handleBulkPrice)
			r.Post("/products/bulk-delete", s.handleBulkDelete)
		})
	})
}

// Start begins listening for HTTP requests. The write timeout is stretched
// to cover the longest import.
func (s *Server) Start(addr string) error {
	writeTimeout := s.cfg.Server.WriteTimeout
	if floor := s.service.ImportTimeout() + 30*time.Second; writeTimeout < floor {
		writeTimeout = floor
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr, "write_timeout", writeTimeout)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses. The API serves
// no HTML, so the content policy denies everything.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
