package http

import (
	"html/template"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mrlokans/library/internal/security"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Templates that fail to parse panic, as at startup nothing can be served.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", c.GetString(requestIDKey))}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(RequestIDMiddleware())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	if cfg.Analytics != nil && cfg.Analytics.Enabled {
		router.Use(AnalyticsContextMiddleware(cfg.Analytics))
	}
	router.Use(security.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(security.StrictTransportSecurityMiddleware())
	}

	// Sessions load first so the request CSRF hands down still carries them.
	var flash FlashStore
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
		flash = cfg.Sessions
	}

	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.InjectContext())
		router.Use(cfg.DemoMiddleware.Handler())
	}

	if cfg.WriteLimiter != nil {
		router.Use(cfg.WriteLimiter.Middleware())
	}

	router.SetHTMLTemplate(mustLoadTemplates(cfg.TemplatesPath))
	router.StaticFS("/static", staticFileSystem(cfg.StaticPath))

	var mutations MutationRecorder
	if cfg.Metrics != nil {
		mutations = cfg.Metrics
	}

	health := NewHealthController(cfg.Database, cfg.ExportSchedule, cfg.Version)
	books := NewBooksController(cfg.Catalog, flash, mutations, logger)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	if cfg.Metrics != nil {
		router.GET("/metrics", cfg.Metrics.Handler())
	}

	// Catalog
	router.GET("/", books.Index)
	router.GET("/books", books.Index)
	router.GET("/books/page/:pageNumber", books.ListPage)
	router.POST("/books/search", books.Search)
	router.GET("/books/new", books.NewForm)
	router.POST("/books", books.Create)
	router.GET("/books/:id", books.Show)
	router.POST("/books/:id", books.Update)
	router.GET("/books/:id/delete", books.DeleteConfirm)
	router.POST("/books/:id/delete", books.Delete)
	router.DELETE("/books/:id", books.Delete)

	if cfg.Exports != nil {
		exports := NewExportController(cfg.Exports, cfg.ExportDir, flash, logger)
		books.exportEnabled = true
		router.POST("/books/export", exports.Enqueue)
	}

	router.NoRoute(func(c *gin.Context) {
		renderErrorPage(c, http.StatusNotFound, "Page not found")
	})

	return router
}

// NewHandler returns the router wrapped with method override, ready to serve.
func NewHandler(cfg RouterConfig) http.Handler {
	return MethodOverride(NewRouter(cfg))
}

func mustLoadTemplates(dir string) *template.Template {
	tmpl, err := loadTemplates(dir)
	if err != nil {
		panic(err)
	}
	return tmpl
}
