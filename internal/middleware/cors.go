package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
	corsAllowMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
)

// CORS adds Access-Control headers for allowed origins and answers preflight
// requests. Credentials are only advertised to explicitly listed origins,
// since browsers refuse them alongside a wildcard.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[strings.ToLower(strings.TrimRight(origin, "/"))] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			_, listed := allowed[strings.ToLower(origin)]
			switch {
			case listed:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			if listed || allowAll {
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
			}
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
