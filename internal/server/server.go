// Package server wires every feature package into one HTTP API over
// the shared database, profile store and retriever.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avsrecruit/talentsearch/internal/audit"
	"github.com/avsrecruit/talentsearch/internal/chat"
	"github.com/avsrecruit/talentsearch/internal/config"
	"github.com/avsrecruit/talentsearch/internal/db"
	"github.com/avsrecruit/talentsearch/internal/kpi"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/retriever"
	"github.com/avsrecruit/talentsearch/internal/vacancy"
)

// Server is the talent search API server.
type Server struct {
	cfg        *config.Config
	db         *db.DB
	profiles   *profile.Store
	retriever  *retriever.Retriever
	router     chi.Router
	httpServer *http.Server
}

// New builds a server from configuration: it opens the database, loads
// the search artifacts (degrading gracefully when some are missing) and
// registers every feature package's routes.
func New(cfg *config.Config) (*Server, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	profiles := profile.NewStore(cfg.ParsedDir())
	ret := retriever.Load(profiles, cfg.ParsedDir(), cfg.IndexDir(), retriever.OptionsFromConfig(cfg.Retrieval))

	s := &Server{
		cfg:       cfg,
		db:        database,
		profiles:  profiles,
		retriever: ret,
	}

	if err := s.buildRouter(); err != nil {
		database.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) buildRouter() error {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.Server.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	auditStore := audit.NewStore(s.db)
	vacancies := vacancy.NewStore(s.db)
	kpiService := kpi.NewService(s.profiles, s.db)

	provider, err := chat.NewProvider(s.cfg.Chat)
	if err != nil {
		return fmt.Errorf("configuring chat provider: %w", err)
	}
	sessions := chat.NewSessionStore(s.db)
	assistant := chat.NewAssistant(provider, s.retriever, sessions, auditStore, s.cfg.Chat)

	profile.RegisterRoutes(r, s.profiles, s.cfg.ResumesDir(), auditStore)
	retriever.RegisterRoutes(r, s.retriever, s.cfg.Retrieval.DefaultK, auditStore)
	vacancy.RegisterRoutes(r, vacancies, s.profiles)
	kpi.RegisterRoutes(r, kpiService)
	audit.RegisterRoutes(r, auditStore)
	chat.RegisterRoutes(r, assistant, sessions)

	s.router = r
	return nil
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port and blocks until the
// listener stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("talentsearch server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener gracefully and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.db.Close()
			return err
		}
	}
	return s.db.Close()
}
