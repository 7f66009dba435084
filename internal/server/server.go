// Package server wires the store, service, handlers, and middleware into a
// chi router and owns the HTTP server lifecycle. main.go stays minimal; all
// dependencies are assembled here, in one place.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/movielist/internal/handler"
	"github.com/sakif/movielist/internal/metadata"
	"github.com/sakif/movielist/internal/middleware"
	"github.com/sakif/movielist/internal/repository"
	"github.com/sakif/movielist/internal/repository/jsonfile"
	sqliteRepo "github.com/sakif/movielist/internal/repository/sqlite"
	"github.com/sakif/movielist/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port         string
	StoreBackend string // "jsonfile" (default) or "sqlite"
	StorePath    string // jsonfile backend
	DBPath       string // sqlite backend
	OMDBAPIKey   string
	OMDBBaseURL  string
	TemplateDir  string
	StaticDir    string
}

// Server is the HTTP server and its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	closer io.Closer // sqlite backend needs closing on shutdown; jsonfile doesn't
}

// New builds the full dependency chain: store → metadata client → service →
// handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	store, closer, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		closer: closer,
	}

	lookup := metadata.NewOMDBClient(cfg.OMDBAPIKey, cfg.OMDBBaseURL)
	svc := service.NewMovieListService(store, lookup, logger)

	if err := s.setupRoutes(svc); err != nil {
		s.close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func newStore(cfg Config) (repository.Store, io.Closer, error) {
	switch cfg.StoreBackend {
	case "", "jsonfile":
		store, err := jsonfile.New(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening json store: %w", err)
		}
		return store, nil, nil
	case "sqlite":
		store, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (s *Server) close() {
	if s.closer != nil {
		s.closer.Close()
	}
}

func (s *Server) setupRoutes(svc *service.MovieListService) error {
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	userHandler := handler.NewUserHandler(svc, render, s.logger)
	movieHandler := handler.NewMovieHandler(svc, render, s.logger)

	s.router.Get("/", userHandler.HandleHome)
	s.router.Get("/users", userHandler.HandleListUsers)
	s.router.Get("/user/{id}/movies", userHandler.HandleUserMovies)
	s.router.Get("/user_movies/{id}", userHandler.HandleUserPage)
	s.router.Get("/add_user", userHandler.HandleAddUserForm)
	s.router.Post("/add_user", userHandler.HandleAddUser)

	s.router.Route("/users/{id}", func(r chi.Router) {
		r.Get("/add_movie", movieHandler.HandleAddMovieForm)
		r.Post("/add_movie", movieHandler.HandleAddMovie)
		r.Get("/update_movie/{movieID}", movieHandler.HandleUpdateMovieForm)
		r.Put("/update_movie/{movieID}", movieHandler.HandleUpdateMovie)
		r.Post("/update_movie/{movieID}", movieHandler.HandleUpdateMovieOverride)
		r.Get("/delete_movie/{movieID}", movieHandler.HandleDeleteMovieConfirm)
		r.Post("/delete_movie/{movieID}", movieHandler.HandleDeleteMovie)
	})

	s.router.NotFound(userHandler.HandleNotFound)

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight requests
// and closes the store.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("backend", s.config.StoreBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
