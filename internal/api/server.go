// Package api exposes the matching engine and lead pool over HTTP for
// the dashboard frontend.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Deanthehandyman/Newleadsdaily/internal/matcher"
	"github.com/Deanthehandyman/Newleadsdaily/internal/store"
)

// Server holds the API dependencies.
type Server struct {
	store        store.Store
	engine       *matcher.Engine
	defaultBatch int
}

// New creates an API server over the given store and engine.
// defaultBatch is the leads-per-request count used when the caller does
// not pass one; zero falls back to matcher.DefaultBatchSize.
func New(st store.Store, eng *matcher.Engine, defaultBatch int) *Server {
	if defaultBatch == 0 {
		defaultBatch = matcher.DefaultBatchSize
	}
	return &Server{store: st, engine: eng, defaultBatch: defaultBatch}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{userID}/leads", s.handleNextLeads)
		r.Get("/users/{userID}/allocations", s.handleListAllocations)
		r.Post("/users/{userID}/leads/{leadID}/status", s.handleSetStatus)
		r.Put("/users/{userID}/preferences", s.handleUpdatePreferences)
		r.Post("/leads", s.handleCreateLead)
	})

	return r
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
