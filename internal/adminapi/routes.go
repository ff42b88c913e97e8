package adminapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jafarlihi/cppq-go"
	"github.com/jafarlihi/cppq-go/internal/adminapi/handlers"
	apimiddleware "github.com/jafarlihi/cppq-go/internal/adminapi/middleware"
	"github.com/jafarlihi/cppq-go/internal/adminapi/websocket"
	"github.com/jafarlihi/cppq-go/internal/config"
)

// Server is the admin HTTP control surface: health, queue inspection,
// pause/resume, convenience enqueue, Prometheus metrics, and a live-stats
// websocket. It never touches task dispatch itself.
type Server struct {
	router *chi.Mux
	store  cppq.Store
	cfg    *config.Config

	healthHandler *handlers.HealthHandler
	queueHandler  *handlers.QueueHandler
	taskHandler   *handlers.TaskHandler

	wsHub     *websocket.Hub
	wsHandler *websocket.Handler
}

// NewServer builds the admin HTTP surface over store, configured by cfg.
func NewServer(cfg *config.Config, store cppq.Store) *Server {
	hub := websocket.NewHub()

	s := &Server{
		router:        chi.NewRouter(),
		store:         store,
		cfg:           cfg,
		healthHandler: handlers.NewHealthHandler(store),
		queueHandler:  handlers.NewQueueHandler(store),
		taskHandler:   handlers.NewTaskHandler(store),
		wsHub:         hub,
		wsHandler:     websocket.NewHandler(hub),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
}

func (s *Server) setupRoutes() {
	authCfg := &apimiddleware.AuthConfig{
		Enabled:   s.cfg.Auth.Enabled,
		JWTSecret: s.cfg.Auth.JWTSecret,
		APIKeys:   apiKeySet(s.cfg.Auth.APIKeys),
	}

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(apimiddleware.RateLimit(100))
		r.Use(apimiddleware.Auth(authCfg))

		r.Get("/health", s.healthHandler.ServeHTTP)

		r.Get("/queues", s.queueHandler.List)
		r.Post("/queues/{queue}/pause", s.queueHandler.Pause)
		r.Post("/queues/{queue}/resume", s.queueHandler.Resume)

		r.Get("/tasks/{queue}/{uuid}", s.taskHandler.Get)
		r.Post("/tasks/{queue}", s.taskHandler.Create)
	})

	s.router.Get("/ws", s.wsHandler.ServeWS)

	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}
}

func apiKeySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// Start starts the websocket hub and the queue-depth snapshot loop in
// background goroutines and returns immediately. The snapshot loop stops
// when ctx is cancelled; the hub runs until Stop.
func (s *Server) Start(ctx context.Context) {
	go s.wsHub.Run()
	go runSnapshotLoop(ctx, s.store, s.wsHub)
}

// Stop shuts down the websocket hub.
func (s *Server) Stop() {
	s.wsHub.Stop()
}

// Router returns the chi router, for embedding in an http.Server.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
