package middleware

import (
	"net"
	"net/http"
	"strings"
)

// RealIP replaces r.RemoteAddr with the client address reported by a reverse
// proxy (X-Real-IP, else the first X-Forwarded-For hop). The headers are
// client-controlled unless a proxy overwrites them, so they are only read when
// trusted is set.
func RealIP(trusted bool, next http.Handler) http.Handler {
	if !trusted {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := forwardedIP(r); ip != "" {
			r.RemoteAddr = net.JoinHostPort(ip, "0")
		}
		next.ServeHTTP(w, r)
	})
}

func forwardedIP(r *http.Request) string {
	candidate := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if candidate == "" {
		first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		candidate = strings.TrimSpace(first)
	}
	if net.ParseIP(candidate) == nil {
		return ""
	}
	return candidate
}
