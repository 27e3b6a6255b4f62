package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scene-hunter/scenehunter/internal/devserver/auth"
	"github.com/scene-hunter/scenehunter/internal/model"
)

type contextKey string

const playerContextKey contextKey = "player_id"

// authMiddleware requires a valid bearer token and puts the resolved
// player id on the request context
func authMiddleware(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				WriteError(w, NewUnauthorizedError())
				return
			}

			playerID, err := authService.ResolvePlayer(token)
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, playerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// playerFromContext returns the authenticated player id
func playerFromContext(ctx context.Context) model.PlayerID {
	id, _ := ctx.Value(playerContextKey).(model.PlayerID)
	return id
}

// loggingMiddleware logs each request
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request handled",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

// recoveryMiddleware converts panics into 500s
func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in handler",
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec))
					WriteError(w, &httpError{http.StatusInternalServerError,
						APIError{CodeInternalError, "Internal server error"}})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
