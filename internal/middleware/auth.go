package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const (
	ClientKey contextKey = "client"
	APIKeyKey contextKey = "api_key"
)

// public endpoints never need a key
func isPublic(path string) bool {
	return path == "/health" || path == "/livez" || path == "/metrics"
}

// APIKeyAuth validates API key from Authorization header.
// validKeys maps client id -> key.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// constant-time comparison, and no early exit so every key is compared
			var client string
			for c, key := range validKeys {
				if key == "" {
					continue
				}
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					client = c
				}
			}
			if client == "" {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, client)
			ctx = context.WithValue(ctx, APIKeyKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientFromContext extracts the authenticated client id.
func GetClientFromContext(ctx context.Context) string {
	if client, ok := ctx.Value(ClientKey).(string); ok {
		return client
	}
	return ""
}

// RequireClientMatch ensures the {client} URL parameter is valid and belongs
// to the authenticated key. Must run inside a chi route that declares {client}.
func RequireClientMatch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlClient := chi.URLParam(r, "client")
		if err := ValidateClientID(urlClient); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if GetClientFromContext(r.Context()) != urlClient {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
