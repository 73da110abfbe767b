package middlewares

import (
	"net"
	"net/http"
	"strings"
)

// forwardedHeaders are consulted in order before RemoteAddr.
var forwardedHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// ClientIPMiddleware rewrites RemoteAddr to "ip:port" using the proxy headers
// so rate limiting and capture records see the real client.
func ClientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := extractClientIP(r); ip != "" {
			port := "0"
			if _, p, err := net.SplitHostPort(r.RemoteAddr); err == nil && p != "" {
				port = p
			}
			r.RemoteAddr = net.JoinHostPort(ip, port)
		}

		next.ServeHTTP(w, r)
	})
}

func extractClientIP(r *http.Request) string {
	for _, header := range forwardedHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		// X-Forwarded-For lists the originating client first.
		first, _, _ := strings.Cut(value, ",")
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return parseIP(host)
	}
	return parseIP(r.RemoteAddr)
}

func parseIP(value string) string {
	if parsed := net.ParseIP(strings.TrimSpace(value)); parsed != nil {
		return parsed.String()
	}
	return ""
}
