package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/darmiel/chatsts/internal/api/middleware"
	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/service"
)

type Server struct {
	tokenService *service.TokenService
	cors         config.CORSConfig
	rateLimit    config.RateLimitConfig
}

func NewServer(
	tokenService *service.TokenService,
	corsConfig config.CORSConfig,
	rateLimit config.RateLimitConfig,
) *Server {
	return &Server{
		tokenService: tokenService,
		cors:         corsConfig,
		rateLimit:    rateLimit,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoverMiddleware)
	r.Use(middleware.CorrelationIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	// an empty origin list would make cors allow everyone, so no CORS headers are sent at all then
	if len(s.cors.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cors.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middleware.CorrelationIDHeader},
			ExposedHeaders: []string{middleware.CorrelationIDHeader},
			MaxAge:         300,
		}))
	}

	// public routes
	r.Get(HealthCheckRoute, s.handleHealth)
	r.Get(AboutRoute, s.handleAbout)

	// token issuer route
	r.With(middleware.RateLimit(s.rateLimit.Requests, s.rateLimit.Window)).
		Post(IssueTokenRoute, s.handleIssue)

	return r
}
