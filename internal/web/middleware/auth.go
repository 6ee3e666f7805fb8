package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

// APIKeyAuth guards a route group with the X-API-Key header. An empty key
// list leaves the routes open.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			switch {
			case apiKey == "":
				slog.Warn("auth: missing API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeAuthError(w, http.StatusUnauthorized, "missing API key", "AUTH001")
				return
			case !isValidAPIKey(apiKey, keys):
				slog.Warn("auth: invalid API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeAuthError(w, http.StatusForbidden, "invalid API key", "AUTH002")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}

// isValidAPIKey compares against every key in constant time so the
// response time does not reveal which key, if any, matched.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
