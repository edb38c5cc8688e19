package info

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRootHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	RootHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got Root
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Root{Message: "Welcome to docker-nextpy API", Docs: "/docs", Users: "/users"}
	if got != want {
		t.Fatalf("root = %+v, want %+v", got, want)
	}
}

func TestDocsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	DocsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "openapi:") {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	var checkErr = errors.New("sql: database is closed")
	h := HealthHandler(func(context.Context) error { return checkErr })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), `"disconnected"`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "database is closed") {
		t.Fatalf("failure not reported: %s", rec.Body.String())
	}

	checkErr = nil
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"connected"`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
