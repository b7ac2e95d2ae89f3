package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestU_Router_Routes(t *testing.T) {
	r := New(&Config{Version: "test"})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"[Unit] route: health", http.MethodGet, "/health", "", http.StatusOK},
		{"[Unit] route: ready", http.MethodGet, "/ready", "", http.StatusOK},
		{"[Unit] route: digest", http.MethodPost, "/api/v1/digest", `{"algorithm":"sha256","data":""}`, http.StatusOK},
		{"[Unit] route: inspect bad body", http.MethodPost, "/api/v1/keys/inspect", "not json", http.StatusBadRequest},
		{"[Unit] route: verify bad body", http.MethodPost, "/api/v1/keys/verify", "not json", http.StatusBadRequest},
		{"[Unit] route: envelope bad body", http.MethodPost, "/api/v1/envelopes/verify", "not json", http.StatusBadRequest},
		{"[Unit] route: unknown path", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
		{"[Unit] route: wrong method", http.MethodGet, "/api/v1/digest", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestU_Router_RequestID(t *testing.T) {
	r := New(&Config{Version: "test"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("no X-Request-ID header assigned")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-id" {
		t.Errorf("X-Request-ID = %q, want caller-id", got)
	}
}
