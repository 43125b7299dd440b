package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sharepad/internal/completion"
	"sharepad/internal/executor"
	"sharepad/internal/room"
	"sharepad/internal/storage"
)

// Server is the HTTP and websocket boundary of the room service.
type Server struct {
	registry  *room.Registry
	hub       *hub
	runner    *executor.Runner
	completer *completion.Client // nil when no provider is configured
	store     storage.Store      // nil in pure in-memory mode
	router    chi.Router
	http      *http.Server
}

// New creates a new Server. completer and store may be nil.
func New(registry *room.Registry, runner *executor.Runner, completer *completion.Client, store storage.Store) *Server {
	s := &Server{
		registry:  registry,
		hub:       newHub(),
		runner:    runner,
		completer: completer,
		store:     store,
		router:    chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)

		r.Post("/execute", s.handleExecute)
		r.Post("/complete", s.handleComplete)

		r.Get("/rooms/{roomID}", s.handleGetRoom)
		r.Put("/rooms/{roomID}", s.handleSaveRoom)
	})

	// WebSocket (no JSON content-type)
	r.Get("/ws", s.handleWebSocket)
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	log.Printf("sharepad server starting on http://localhost%s", addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
