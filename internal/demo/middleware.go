package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BlockedMessage is shown when a write is refused in demo mode.
const BlockedMessage = "This action is disabled in demo mode"

// Middleware blocks write operations in demo mode.
// Read-only operations (GET) are always allowed.
// Certain routes are allowlisted even for non-GET methods (search).
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if m.isAllowed(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// isAllowed reports whether a non-read request may pass in demo mode.
// Search is a POST but never writes.
func (m *Middleware) isAllowed(method, path string) bool {
	return method == http.MethodPost && strings.TrimSuffix(path, "/") == "/books/search"
}

func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     BlockedMessage,
			"demo_mode": true,
		})
		return
	}

	c.String(http.StatusForbidden, BlockedMessage)
	c.Abort()
}

// ContextKeyDemoMode stores demo mode state for template rendering.
const ContextKeyDemoMode = "demo_mode"

// InjectContext middleware adds demo mode flag to context for template rendering.
func (m *Middleware) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		c.Next()
	}
}
