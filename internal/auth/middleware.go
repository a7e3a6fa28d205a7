package auth

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// AuthContextKey is the key for storing AuthContext in request context
	AuthContextKey ContextKey = "authContext"
)

// Middleware verifies the bearer token, provisions the user and injects an AuthContext.
//
// A missing or invalid token does not fail the request; it proceeds without auth
// context so public endpoints keep working. Protected endpoints use RequireAuth.
func Middleware(authService *AuthService, tokenExtractor *TokenExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				slog.Debug("no authorization header provided")
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokenExtractor.ExtractClaimsFromHeader(authHeader)
			if err != nil {
				slog.Warn("failed to verify bearer token",
					"error", err,
					"auth_header_length", len(authHeader),
				)
				next.ServeHTTP(w, r)
				return
			}

			if err := authService.EnsureUser(r.Context(), claims.Subject, claims.Email); err != nil {
				slog.Warn("failed to provision user",
					"user_id", claims.Subject,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			authCtx := &AuthContext{UserID: claims.Subject, Email: claims.Email}
			if claims.ExpiresAt != nil {
				authCtx.ExpiresAt = claims.ExpiresAt.Time
			}

			ctx := context.WithValue(r.Context(), AuthContextKey, authCtx)
			slog.Debug("auth context injected successfully", "user_id", claims.Subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuthContext extracts the AuthContext from a request context.
// Returns nil if no auth context is available (request had no valid token).
func GetAuthContext(ctx context.Context) *AuthContext {
	authCtx, ok := ctx.Value(AuthContextKey).(*AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// WithAuthContext returns ctx carrying authCtx.
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey, authCtx)
}

// RequireAuth returns a middleware that requires authentication.
// If no auth context is found, returns 401 Unauthorized.
//
// Usage:
//
//	protected := auth.RequireAuth(authService, tokenExtractor)
//	mux.Handle("POST /api/analyses", protected(http.HandlerFunc(h.HandleCreateAnalysis)))
func RequireAuth(authService *AuthService, tokenExtractor *TokenExtractor) func(http.Handler) http.Handler {
	// Create the auth middleware once, not on every request
	authMiddleware := Middleware(authService, tokenExtractor)

	return func(next http.Handler) http.Handler {
		return authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetAuthContext(r.Context()) == nil {
				slog.Warn("authentication required but not provided",
					"method", r.Method,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"authentication required"}`))
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}
