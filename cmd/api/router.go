package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"libraryapi/internal/auth"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
	"libraryapi/internal/library"
	"libraryapi/internal/user"
	"libraryapi/internal/validate"
)

// newRouter wires services and handlers over st and mounts every route.
// The returned stop func releases the rate limiter.
func newRouter(cfg *config.Config, st stores, logger *slog.Logger) (http.Handler, func()) {
	pagination := httpx.Pagination{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	upload := validate.UploadPolicy{AllowedExtensions: cfg.UploadAllowedExtensions, MaxSize: cfg.MaxUploadSize}

	userService := user.NewService(st.users, user.NewLocalPhotoStore(cfg.UploadDir), upload)
	authHandler := auth.NewHTTPHandler(auth.NewService(cfg.JWTSecret, cfg.JWTTTL, userService, st.blacklist))
	userHandler := user.NewHTTPHandler(userService)
	authorHandler := author.NewHTTPHandler(author.NewService(st.authors, cfg.PublicRead), pagination)
	bookHandler := book.NewHTTPHandler(book.NewService(st.books, cfg.PublicRead), pagination)
	libraryHandler := library.NewHTTPHandler(library.NewService(st.libraries, cfg.PublicRead), pagination)

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(logger))
	r.Use(httpx.RecoveryMiddleware(logger))
	r.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	r.Use(httpx.CORSMiddleware(cfg.GetCORSAllowedOrigins()))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.MaxRequestBodySize))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]string{"status": "ok"}, nil)
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		for _, p := range st.ready {
			if err := p.Ping(ctx); err != nil {
				httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Dependency not ready", nil)
				return
			}
		}
		httpx.JSONSuccess(w, r, map[string]string{"status": "ready"}, nil)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		r.Use(httpx.AuthMiddleware(cfg.JWTSecret, st.blacklist))

		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/me", userHandler.Me)
		r.Post("/me/photo", userHandler.UploadPhoto)
		r.Patch("/users/{id}/role", userHandler.SetRole)

		r.Route("/authors", func(r chi.Router) {
			r.Get("/", authorHandler.List)
			r.Post("/", authorHandler.Create)
			r.Get("/{id}", authorHandler.Get)
			r.Put("/{id}", authorHandler.Update)
			r.Patch("/{id}", authorHandler.Patch)
			r.Delete("/{id}", authorHandler.Delete)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.List)
			r.Post("/", bookHandler.Create)
			r.Post("/bulk-delete", bookHandler.BulkDelete)
			r.Get("/{id}", bookHandler.Get)
			r.Put("/{id}", bookHandler.Update)
			r.Patch("/{id}", bookHandler.Patch)
			r.Delete("/{id}", bookHandler.Delete)
		})

		r.Route("/libraries", func(r chi.Router) {
			r.Get("/", libraryHandler.List)
			r.Post("/", libraryHandler.Create)
			r.Get("/{id}", libraryHandler.Get)
			r.Put("/{id}", libraryHandler.Update)
			r.Delete("/{id}", libraryHandler.Delete)
			r.Put("/{id}/books/{bookID}", libraryHandler.AddBook)
			r.Delete("/{id}/books/{bookID}", libraryHandler.RemoveBook)
		})

		r.Route("/librarians", func(r chi.Router) {
			r.Get("/", libraryHandler.ListLibrarians)
			r.Post("/", libraryHandler.CreateLibrarian)
			r.Get("/{id}", libraryHandler.GetLibrarian)
			r.Delete("/{id}", libraryHandler.DeleteLibrarian)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})
	return r, rateLimiter.Stop
}
