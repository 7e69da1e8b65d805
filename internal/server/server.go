// Package server wires the HTTP surface: REST API, websocket streams, health
// check and the embedded dashboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/evemind/evemind/internal/api/ws"
	"github.com/evemind/evemind/internal/auth"
	"github.com/evemind/evemind/internal/config"
	"github.com/evemind/evemind/internal/events"
	"github.com/evemind/evemind/internal/server/middleware"
	"github.com/evemind/evemind/internal/store"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *store.Store
	auth       *auth.Service
	wsHub      *ws.Hub
	cfg        *config.Config
}

// New creates a Server with all routes wired. webAssets may be nil; when
// provided, the embedded dashboard is served on all unmatched routes.
func New(ctx context.Context, cfg *config.Config, st *store.Store, bus *events.Bus, authSvc *auth.Service, webAssets fs.FS) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	hub := ws.NewHub(bus, st.Tables())

	s := &Server{
		router: router,
		store:  st,
		auth:   authSvc,
		wsHub:  hub,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api with three sub-groups:
	// 1. Unauthenticated auth endpoints, rate limited per IP.
	// 2. Authenticated entity and audit endpoints (OpenAPI docs live here).
	// 3. Admin-only generic table surface under /database.
	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.Rate.AuthPerSecond, cfg.Rate.AuthBurst))

			authConfig := huma.DefaultConfig("Evemind Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{{URL: "/api"}}
			disableDocs(&authConfig)
			registerAuthRoutes(humachi.New(r, authConfig), authSvc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authSvc))
			r.Use(middleware.RateLimitByUser(ctx, cfg.Rate.APIPerSecond, cfg.Rate.APIBurst))

			apiConfig := huma.DefaultConfig("Evemind API", "1.0.0")
			apiConfig.Servers = []*huma.Server{{URL: "/api"}}
			registerAPIRoutes(humachi.New(r, apiConfig), st)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authSvc))
			r.Use(middleware.RequireAdmin())

			dbConfig := huma.DefaultConfig("Evemind Database API", "1.0.0")
			dbConfig.Servers = []*huma.Server{{URL: "/api"}}
			disableDocs(&dbConfig)
			registerDatabaseRoutes(humachi.New(r, dbConfig), st)
		})
	})

	// WebSocket routes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(authSvc))
		registerWSRoutes(r, hub)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Serve the embedded dashboard on all unmatched routes. This must be the
	// last route registered so API/WS routes take priority.
	if webAssets != nil {
		router.NotFound(spaFileServer(webAssets).ServeHTTP)
		log.Info().Msg("embedded dashboard enabled")
	}

	return s
}

// disableDocs strips the OpenAPI/docs/schema endpoints from secondary API
// groups so only the main group serves them (chi panics on duplicate routes).
func disableDocs(cfg *huma.Config) {
	cfg.DocsPath = ""
	cfg.OpenAPIPath = ""
	cfg.SchemasPath = ""
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
