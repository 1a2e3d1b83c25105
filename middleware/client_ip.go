package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientIP resolves the caller's address, preferring proxy headers over the
// socket peer.
func clientIP(c *gin.Context) string {
	// X-Forwarded-For carries the whole proxy chain; the first address is
	// the originating client.
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
		return xri
	}

	addr := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
