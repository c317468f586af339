package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/services"
)

type contextKey string

const claimsContextKey contextKey = "claims"

var errNoClaims = errors.New("no authenticated user in request context")

// Authenticate validates the bearer token and stores its claims on the
// request context. Requests without a valid token are rejected outright;
// optional authentication is not a thing here; public routes simply skip
// this middleware.
func Authenticate(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(token)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize allows the request through only when the authenticated user holds
// one of the given roles. Must be mounted after Authenticate.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(claimsContextKey).(*services.Claims)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

// GetUserIDFromContext returns the authenticated user's ID.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(claimsContextKey).(*services.Claims)
	if !ok {
		return 0, errNoClaims
	}
	return claims.UserID, nil
}

// GetUserRoleFromContext returns the authenticated user's role.
func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(claimsContextKey).(*services.Claims)
	if !ok {
		return "", errNoClaims
	}
	return claims.Role, nil
}
