package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// addressKey is the context key for the authenticated wallet address.
const addressKey contextKey = "address"

// GetAddress extracts the authenticated wallet address from the context.
// The second return is false when the request was not authenticated.
func GetAddress(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(addressKey).(common.Address)
	return addr, ok
}

// RequireAuth returns a middleware that validates the bearer JWT and adds
// the wallet address to the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), addressKey, common.HexToAddress(claims.Address))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
