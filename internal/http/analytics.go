package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/analytics"
	"github.com/mrlokans/library/internal/security"
)

const analyticsContextKey = "analytics_script_tag"

// AnalyticsContextMiddleware makes the Plausible script tag available to
// templates and its origin available to the CSP. Must run before
// SecurityHeadersMiddleware.
func AnalyticsContextMiddleware(cfg *analytics.PlausibleConfig) gin.HandlerFunc {
	tag := cfg.ScriptTag()
	return func(c *gin.Context) {
		if tag != "" {
			c.Set(analyticsContextKey, tag)
			c.Set(security.AnalyticsScriptURLContextKey, cfg.ScriptURL)
		}
		c.Next()
	}
}

func analyticsScriptTag(c *gin.Context) template.HTML {
	if tag, ok := c.Get(analyticsContextKey); ok {
		if html, ok := tag.(template.HTML); ok {
			return html
		}
	}
	return ""
}
