package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"userapi/internals/handlers/info"
	"userapi/internals/handlers/users"
	"userapi/internals/password"
)

type Options struct {
	Users  users.Store
	Hasher password.Hasher
	// Health is run by /healthz on every request.
	Health           func(ctx context.Context) error
	AllowedOrigins   []string
	AllowCredentials bool
	Log              *logrus.Logger
}

// NewRouter wires every route and wraps the result in the CORS handler.
func NewRouter(opts Options) http.Handler {
	if opts.Hasher == nil {
		opts.Hasher = password.Plain{}
	}
	if opts.Health == nil {
		opts.Health = func(context.Context) error { return nil }
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Log))
	r.Use(requestMetrics(opts.Log))
	r.Use(middleware.Recoverer)

	r.Get("/", info.RootHandler())
	r.Get("/docs", info.DocsHandler())
	r.Get("/healthz", info.HealthHandler(opts.Health))
	r.Get("/users", users.ListHandler(opts.Users, opts.Log))
	r.Post("/users", users.CreateHandler(opts.Users, opts.Hasher, opts.Log))

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: opts.AllowCredentials,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}
