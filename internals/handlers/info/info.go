package info

import (
	"context"
	_ "embed"
	"net/http"

	"userapi/internals/handlers/respond"
)

//go:embed openapi.yaml
var openAPIDoc []byte

// Root is the static payload served on GET /. It never touches the database.
type Root struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Users   string `json:"users"`
}

var rootPayload = Root{
	Message: "Welcome to docker-nextpy API",
	Docs:    "/docs",
	Users:   "/users",
}

func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, rootPayload)
	}
}

// DocsHandler serves the OpenAPI description of the API.
func DocsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAPIDoc)
	}
}

// HealthHandler runs check on every request and reports 503 when it fails.
func HealthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unavailable",
				"database": "disconnected",
				"detail":   err.Error(),
			})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
	}
}
