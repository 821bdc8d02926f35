package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limit for loopback and private (RFC 1918 / ULA) clients.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowIf returns allow when enabled and nil otherwise.
func AllowIf(enabled bool, allow AllowFunc) AllowFunc {
	if !enabled {
		return nil
	}
	return allow
}
