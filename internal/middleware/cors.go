// Package middleware provides HTTP middleware for the financial coach API.
package middleware

import "net/http"

// CORS returns middleware that answers cross-origin requests for the given
// origins. A "*" entry admits any origin but never grants credentials;
// credentials are only allowed for an origin pinned explicitly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if wildcard, pinned := matchOrigin(allowedOrigins, origin); wildcard || pinned {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				if pinned {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matchOrigin reports how the origin is admitted: via a wildcard entry, or
// via an exact pin.
func matchOrigin(allowed []string, origin string) (wildcard, pinned bool) {
	for _, o := range allowed {
		switch {
		case o == "*":
			wildcard = true
		case o == origin && origin != "":
			pinned = true
		}
	}
	return wildcard, pinned
}
