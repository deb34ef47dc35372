package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/analytics"
	"github.com/mrlokans/library/internal/demo"
	"github.com/mrlokans/library/internal/security"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  BookCatalog
	Database Pinger
	Logger   *zap.Logger

	// Security
	Sessions      *security.SessionManager // nil disables flash messages
	CSRFSecret    []byte                   // empty disables CSRF protection
	SecureCookies bool

	// Writes allowed per client IP per window (optional)
	WriteLimiter *security.RateLimiter

	// Plausible Analytics (optional)
	Analytics *analytics.PlausibleConfig

	// Demo mode (optional)
	DemoMiddleware *demo.Middleware

	// Background export (optional; the export route is only registered when set)
	Exports        ExportEnqueuer
	ExportDir      string
	ExportSchedule ScheduleStatus // reported by /health when set

	// Metrics (optional; /metrics is only registered when set)
	Metrics *Metrics

	// UI paths; empty means the assets embedded in the binary
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
