package security

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// AnalyticsScriptURLContextKey is the Gin context key for the analytics script URL.
// Set by the analytics middleware, read by SecurityHeadersMiddleware.
const AnalyticsScriptURLContextKey = "analytics_script_url"

// SecurityHeadersMiddleware adds security headers to all responses.
// If analytics is configured, its script origin is allowed in the CSP.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Build form-action with explicit host to handle reverse proxy scenarios
		formAction := "'self'"
		if host := c.Request.Host; host != "" {
			formAction = "'self' https://" + host
		}

		scriptSrc := "'self'"
		connectSrc := "'self'"
		if analyticsURL := c.GetString(AnalyticsScriptURLContextKey); analyticsURL != "" {
			if origin := extractOrigin(analyticsURL); origin != "" {
				scriptSrc += " " + origin
				connectSrc += " " + origin
			}
		}

		// Templates carry no inline scripts; styles come from /static only.
		c.Header("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src "+scriptSrc+"; "+
				"connect-src "+connectSrc+"; "+
				"style-src 'self'; "+
				"img-src 'self' data:; "+
				"frame-ancestors 'none'; "+
				"form-action "+formAction)

		c.Header("Permissions-Policy",
			"camera=(), "+
				"geolocation=(), "+
				"microphone=(), "+
				"payment=(), "+
				"usb=()")

		c.Next()
	}
}

// extractOrigin returns scheme://host of rawURL, or "" if it has no host.
func extractOrigin(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// StrictTransportSecurityMiddleware adds HSTS header for HTTPS-only access.
// Only enable this when serving over HTTPS, as it will break HTTP access.
func StrictTransportSecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHTTPS(c.Request) {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
