package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Farvi-13/Medium-Clone/internal/account"
	"github.com/Farvi-13/Medium-Clone/internal/auth"
	"github.com/Farvi-13/Medium-Clone/internal/config"
	"github.com/Farvi-13/Medium-Clone/internal/http/handlers"
	"github.com/Farvi-13/Medium-Clone/internal/middleware"
	"github.com/Farvi-13/Medium-Clone/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	health := handlers.NewHealthHandler(time.Now())
	health.Register(mux)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())
	accounts := account.NewService(store, tokens)
	guard := func(next http.Handler) http.Handler {
		return middleware.Auth(tokens, logger, next)
	}
	users := handlers.NewUserHandler(accounts, logger)
	users.Register(mux, guard)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
