package middleware

import (
	"net"
	"net/http"

	goScope "github.com/MrEthical07/goScope"
)

// ClientIP records the peer address of each request with [goScope.WithClientIP].
// Forwarding headers are not trusted; put a proxy-aware middleware in front when
// the server sits behind one.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(goScope.WithClientIP(r.Context(), ip)))
	})
}
