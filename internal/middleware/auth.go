// Package middleware provides the HTTP middleware chain: CORS, tracing and
// request logging, metrics, rate limiting, and JWT authentication.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jakehorton1228-droid/habit-tracker/internal/auth"
	"github.com/jakehorton1228-droid/habit-tracker/internal/httputil"
	"github.com/jakehorton1228-droid/habit-tracker/internal/logging"
	"github.com/jakehorton1228-droid/habit-tracker/pkg/logger"
)

// AuthMiddleware validates bearer access tokens and puts the user ID in the
// request context.
type AuthMiddleware struct {
	tokens    *auth.TokenManager
	log       *logger.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware builds the middleware. skipPaths are served without a
// token; each entry also covers the path with the opposite trailing slash.
func NewAuthMiddleware(tokens *auth.TokenManager, log *logger.Logger, skipPaths []string) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	skip := make(map[string]bool, 2*len(skipPaths))
	for _, path := range skipPaths {
		skip[strings.TrimSuffix(path, "/")] = true
		skip[strings.TrimSuffix(path, "/")+"/"] = true
	}
	return &AuthMiddleware{tokens: tokens, log: log, skipPaths: skip}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			httputil.Unauthorized(w, "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.Unauthorized(w, "Authorization header must be Bearer <token>")
			return
		}

		claims, err := m.tokens.Verify(parts[1], auth.TypeAccess)
		if err != nil {
			m.log.WithError(err).WithField("path", r.URL.Path).Warn("token rejected")
			httputil.Unauthorized(w, err.Error())
			return
		}

		ctx := logging.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the authenticated user ID from a request context.
func GetUserID(ctx context.Context) string {
	return logging.GetUserID(ctx)
}
