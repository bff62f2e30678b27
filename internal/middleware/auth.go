package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/pkg/identity"
)

// TokenVerifier validates an access token and returns the principal it
// carries.
type TokenVerifier interface {
	Validate(token string) (*identity.Principal, error)
}

// PrincipalKey is the context key for the authenticated principal
const PrincipalKey contextKey = "principal"

// Auth returns a middleware that validates bearer tokens
func Auth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				model.NewUnauthorizedError("missing authorization header").WriteJSON(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				model.NewUnauthorizedError("invalid authorization header format").WriteJSON(w)
				return
			}

			principal, err := verifier.Validate(parts[1])
			if err != nil {
				switch err {
				case identity.ErrTokenExpired:
					model.NewUnauthorizedError("token expired").WriteJSON(w)
				case identity.ErrInvalidSignature:
					model.NewUnauthorizedError("invalid token signature").WriteJSON(w)
				default:
					model.NewUnauthorizedError("invalid token").WriteJSON(w)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, principal.UserID)
			ctx = context.WithValue(ctx, PrincipalKey, principal)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(ctx context.Context) *identity.Principal {
	if p, ok := ctx.Value(PrincipalKey).(*identity.Principal); ok {
		return p
	}
	return nil
}

// OptionalAuth is like Auth but doesn't require authentication.
// It will set the principal in context if a valid token is present.
func OptionalAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := verifier.Validate(parts[1])
			if err != nil {
				// Invalid token, but optional so continue without auth
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, principal.UserID)
			ctx = context.WithValue(ctx, PrincipalKey, principal)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
