// Package server exposes the decision engine over an authenticated HTTP
// API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/verdict-finance/verdict/internal/auth"
	"github.com/verdict-finance/verdict/internal/engine"
	"github.com/verdict-finance/verdict/internal/service"
)

// Server holds the API dependencies and builds the route tree.
type Server struct {
	engine      *engine.Engine
	storage     service.Storage
	tokens      *auth.TokenService
	corsOrigins []string
}

// New creates a Server.
func New(eng *engine.Engine, storage service.Storage, tokens *auth.TokenService, corsOrigins []string) *Server {
	return &Server{
		engine:      eng,
		storage:     storage,
		tokens:      tokens,
		corsOrigins: corsOrigins,
	}
}

// Router assembles the full HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/verify", s.handleVerify)
			})
		})

		r.Route("/banks", func(r chi.Router) {
			r.Get("/", s.handleAllBanks)
			r.Get("/top", s.handleTopBanks)
			r.Get("/trusted", s.handleTrustedBanks)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", s.handleMe)
				r.Get("/financial-behavior/{userID}", s.handleFinancialBehavior)
			})

			r.Route("/loans", func(r chi.Router) {
				r.Post("/apply", s.handleApplyLoan)
				r.Get("/user/{userID}", s.handleUserLoans)
				r.Get("/{loanID}", s.handleLoanByID)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/upload", s.handleUploadTransactions)
				r.Get("/analyze/{userID}", s.handleAnalyzeTransactions)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
