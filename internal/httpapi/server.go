// Package httpapi serves the bookmark repository and the user's settings
// as a local JSON API for browser front ends.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"shelf-go/internal/app"
)

// Server wraps the HTTP server and the application it exposes.
type Server struct {
	app    *app.ShelfApp
	logger *zap.Logger
	http   *http.Server

	// mu serializes handlers that touch the repository or settings; the
	// repository itself assumes a single caller.
	mu sync.Mutex
}

// New builds the server (router, middlewares, routes) listening on addr.
func New(a *app.ShelfApp, addr string) *Server {
	s := &Server{
		app:    a,
		logger: a.ZapLogger().Named("http"),
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Handler returns the routed handler with all middlewares applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.logger))

	r.Get("/healthz", s.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.serialize)
		r.Use(middleware.NoCache)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", s.listBookmarks)
			r.Post("/", s.createBookmark)
			r.Patch("/{id}", s.updateBookmark)
			r.Delete("/{id}", s.deleteBookmark)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Post("/", s.createCategory)
			r.Patch("/{id}", s.updateCategory)
			r.Delete("/{id}", s.deleteCategory)
			r.Get("/{id}/path", s.categoryPath)
			r.Get("/{id}/children", s.childCategories)
		})

		r.Get("/export", s.export)
		r.With(middleware.AllowContentType("application/json", "text/html", "text/plain")).
			Post("/import", s.importData)

		r.Get("/theme", s.getTheme)
		r.Put("/theme", s.putTheme)
		r.Get("/layout", s.getLayout)
		r.Put("/layout", s.putLayout)
		r.Get("/language", s.getLanguage)
		r.Put("/language", s.putLanguage)
		r.Get("/i18n/{lang}", s.catalog)
	})

	return r
}

// Start runs the HTTP server and blocks until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}
