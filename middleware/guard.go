package middleware

import (
	"context"
	"net/http"
)

type identityContextKey struct{}

// SessionResolver maps an Authorization header to an identity. *goScope.Engine
// implements it.
type SessionResolver interface {
	Resolve(ctx context.Context, header string) (string, bool)
}

// IdentityFromContext returns the identity stored by [RequireSession].
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(string)
	return identity, ok
}

// RequireSession rejects requests whose bearer session token does not resolve, and
// stores the resolved identity in the request context otherwise.
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, ok := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
