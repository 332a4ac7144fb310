package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rgukt-papers/paperhub/internal/api/handlers"
	appMiddleware "github.com/rgukt-papers/paperhub/internal/api/middlewares"
	"github.com/rgukt-papers/paperhub/internal/config"
	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/core/indexer"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer wraps the wired router in an http.Server.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, flows core.FlowProvider, emb core.EmbeddingProvider, index core.VectorIndex, idx *indexer.PaperIndexer) *Server {
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: NewRouter(cfg, db, obj, flows, emb, index, idx),
	}
	return &Server{httpServer: httpSrv}
}

// NewRouter builds and wires all routes.
func NewRouter(cfg *config.Config, db core.DbClient, obj core.ObjectClient, flows core.FlowProvider, emb core.EmbeddingProvider, index core.VectorIndex, idx *indexer.PaperIndexer) http.Handler {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	paperHandler := handlers.NewPaperHandler(db, obj, flows, idx, cfg)
	solutionHandler := handlers.NewSolutionHandler(db)
	aiHandler := handlers.NewAIHandler(db, flows, emb, index)
	userHandler := handlers.NewUserHandler(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)
		api.Get("/papers", paperHandler.ListPapers)
		api.Get("/papers/{paperID}", paperHandler.GetPaper)
		api.Get("/leaderboard", userHandler.Leaderboard)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(cfg.JWTSecret))
			protected.Post("/papers", paperHandler.SubmitPaper)
			protected.Patch("/papers/{paperID}", paperHandler.UpdatePaper)
			protected.Post("/papers/{paperID}/questions/{questionID}/solutions", solutionHandler.AddSolution)
			protected.Post("/papers/{paperID}/questions/{questionID}/solutions/{solutionID}/vote", solutionHandler.VoteSolution)
			protected.Post("/profile", userHandler.SetupProfile)
			protected.Post("/ai/search", aiHandler.Search)
			protected.Post("/ai/chat", aiHandler.Chat)
			protected.Post("/ai/review", aiHandler.Review)
		})
	})

	return r
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
