package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	enabled := Middleware(Config{Enabled: true, Token: "s3cret"})(ok)
	disabled := Middleware(Config{Enabled: false, Token: "s3cret"})(ok)

	tests := []struct {
		name       string
		handler    http.Handler
		path       string
		authz      string
		wantStatus int
	}{
		{"disabled passes everything", disabled, "/api/v1/convert/fixed", "", http.StatusOK},
		{"missing header", enabled, "/api/v1/convert/fixed", "", http.StatusUnauthorized},
		{"wrong token", enabled, "/api/v1/convert/fixed", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", enabled, "/api/v1/convert/fixed", "Basic s3cret", http.StatusUnauthorized},
		{"empty bearer", enabled, "/api/v1/convert/fixed", "Bearer ", http.StatusUnauthorized},
		{"valid token", enabled, "/api/v1/convert/fixed", "Bearer s3cret", http.StatusOK},
		{"healthz exempt", enabled, "/healthz", "", http.StatusOK},
		{"readyz exempt", enabled, "/readyz", "", http.StatusOK},
		{"metrics exempt", enabled, "/metrics", "", http.StatusOK},
		{"catalog exempt", enabled, "/api/v1/catalog", "", http.StatusOK},
		{"ephemeris protected", enabled, "/api/v1/ephemeris/25544", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.authz != "" {
				req.Header.Set("Authorization", tt.authz)
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Code == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 response missing WWW-Authenticate header")
			}
		})
	}
}
