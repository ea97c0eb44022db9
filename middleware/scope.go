package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/MrEthical07/goScope/acl"
	"github.com/MrEthical07/goScope/jwt"
	"github.com/MrEthical07/goScope/session"
)

type claimsContextKey struct{}

// TokenInspector verifies a signed token and decodes its claims. *goScope.Engine
// implements it.
type TokenInspector interface {
	Inspect(token string) (*jwt.Claims, error)
}

// ClaimsFromContext returns the claims stored by [RequireScope].
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// RequireScope guards a downstream route with an issued token: the signature must
// verify, the token must not be expired, and its ACL must carry the pattern of scope
// or the admin pattern. Bad or missing tokens get 401; valid tokens without the
// scope get 403.
func RequireScope(inspector TokenInspector, scope acl.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if inspector == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := session.ParseBearer(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := inspector.Inspect(token)
			if err != nil || claims.Expired(time.Now()) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !claims.Allows(scope) && !claims.Allows(acl.Admin) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
