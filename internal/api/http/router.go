package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/practice-exam/internal/catalog"
)

type RouterOptions struct {
	CORSOrigins []string
	// DB backs /readyz when set.
	DB *sql.DB
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter mounts the read-only catalog API.
func NewRouter(store catalog.Reader, opts RouterOptions) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/health", HealthHandler(opts.Now))
		ar.Get("/quizzes", ListQuizzesHandler(store))
		ar.Get("/quiz/{examID}", GetQuizHandler(store))
		ar.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "Route not found")
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.DB.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})
	return r
}
