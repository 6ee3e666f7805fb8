package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoRemoteAddr(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(r.RemoteAddr))
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no trusted proxies ignores headers",
			remoteAddr: "203.0.113.9:5555",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.9:5555",
		},
		{
			name:       "untrusted source ignores headers",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.9:5555",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.9:5555",
		},
		{
			name:       "trusted proxy X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "trusted proxy X-Forwarded-For first hop",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:5555",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"},
			want:       "198.51.100.7",
		},
		{
			name:       "invalid header value keeps socket address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.2.3:5555",
		},
		{
			name:       "invalid trusted entry skipped",
			trusted:    []string{"garbage", "::1"},
			remoteAddr: "[::1]:5555",
			headers:    map[string]string{"X-Real-IP": "2001:db8::1"},
			want:       "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(echoRemoteAddr))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		keys   []string
		header string
		want   int
	}{
		{"open when no keys", nil, "", http.StatusNoContent},
		{"missing key", []string{"k1"}, "", http.StatusUnauthorized},
		{"wrong key", []string{"k1", "k2"}, "nope", http.StatusForbidden},
		{"second key accepted", []string{"k1", "k2"}, "k2", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/archive", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(tt.keys)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLogger_RoutePatternAndStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	r := chi.NewRouter()
	r.Use(Logger)
	r.Get("/api/courses/{kind}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/top?k=3", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "route=/api/courses/{kind}")
	assert.Contains(t, out, "path=/api/courses/top")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "bytes=5")
}
