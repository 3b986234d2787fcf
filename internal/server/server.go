package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tareas-web/appserver/config"
	"github.com/tareas-web/appserver/internal/db"
	"github.com/tareas-web/appserver/internal/handlers"
	"github.com/tareas-web/appserver/internal/services"
	"github.com/tareas-web/appserver/internal/session"
	"github.com/tareas-web/appserver/internal/web"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with its store handle, services and routes.
// Everything is wired here at startup; no component keeps global
// state.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	views, err := web.NewViews()
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	accountService := services.NewAccountService(dbConn)
	taskService := services.NewTaskService(dbConn)
	sessions := session.NewManager(cfg.SessionTTL)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, accountService, sessions, views)
	router.Group(func(r chi.Router) {
		r.Use(handlers.RequireAuth(sessions))
		handlers.TaskRouter(r, taskService, sessions, views)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
