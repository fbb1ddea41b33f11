package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller address without its port. Proxy headers are
// not consulted here; chi's RealIP middleware has already folded them into
// RemoteAddr for requests that passed through the router.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
