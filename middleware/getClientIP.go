package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP picks the address the rate limiter keys on. Proxy headers are trusted only when they
// carry a parseable IP, so junk values cannot open a fresh bucket per request.
func getClientIP(c *gin.Context) string {
	// X-Forwarded-For lists the client first, then each proxy.
	for _, candidate := range strings.Split(c.GetHeader("X-Forwarded-For"), ",") {
		if ip := parseIP(candidate); ip != "" {
			return ip
		}
	}

	if ip := parseIP(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}

	// RemoteAddr is "ip:port" for TCP listeners.
	addr := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// parseIP returns the canonical form of raw, or "" if it is not an IP address.
func parseIP(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	return ip.String()
}
