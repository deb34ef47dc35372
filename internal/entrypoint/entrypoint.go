package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/analytics"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/demo"
	"github.com/mrlokans/library/internal/exporters"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/logging"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/security"
	"github.com/mrlokans/library/internal/tasks"
)

// App is the fully wired server: catalog, background workers and handler.
type App struct {
	Handler http.Handler

	catalog       *Catalog
	taskClient    *tasks.Client
	taskCtxCancel context.CancelFunc
	exportSched   *scheduler.ExportScheduler
	writeLimiter  *security.RateLimiter
	logger        *zap.Logger
}

// Build wires every component from cfg. The returned App owns the database
// connection and background workers; release them with Shutdown.
func Build(cfg *config.Config, version string, logger *zap.Logger) (*App, error) {
	catalog, err := OpenCatalog(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app := &App{catalog: catalog, logger: logger}

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		logger.Info("demo mode enabled, write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true)

		seeded, err := demo.SeedIfEmpty(context.Background(), catalog.Books, catalog.Importer)
		if err != nil {
			logger.Warn("failed to seed demo catalog", zap.Error(err))
		} else if seeded > 0 {
			logger.Info("seeded demo catalog", zap.Int("books", seeded))
		}
	}

	sessions, err := newSessionManager(cfg, catalog, logger)
	if err != nil {
		app.Shutdown(context.Background())
		return nil, err
	}

	var csrfSecret []byte
	if cfg.Security.CSRFEnabled {
		secret, generated, err := security.ResolveSecret(cfg.Security.CSRFSecret)
		if err != nil {
			app.Shutdown(context.Background())
			return nil, fmt.Errorf("generate CSRF secret: %w", err)
		}
		if generated {
			logger.Info("generated CSRF secret, set CSRF_SECRET to keep forms valid across restarts")
		}
		csrfSecret = secret
	}

	var metrics *http_controllers.Metrics
	if cfg.Metrics.Enabled {
		metrics = http_controllers.NewMetrics()
	}

	if cfg.RateLimit.Writes > 0 {
		app.writeLimiter = security.NewRateLimiter(security.RateLimitConfig{
			MaxWrites:      cfg.RateLimit.Writes,
			WindowDuration: cfg.RateLimit.Window,
		})
	}

	plausible := analytics.FromConfig(cfg.Plausible)
	if plausible.Enabled {
		logger.Info("plausible analytics enabled", zap.String("domain", plausible.Domain))
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        catalog.Service,
		Database:       catalog.DB,
		Logger:         logger.Named("http"),
		Sessions:       sessions,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Security.SecureCookies,
		WriteLimiter:   app.writeLimiter,
		Analytics:      plausible,
		DemoMiddleware: demoMiddleware,
		Metrics:        metrics,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	}

	if cfg.Tasks.Enabled {
		if err := app.startTasks(cfg); err != nil {
			app.Shutdown(context.Background())
			return nil, err
		}
		routerCfg.Exports = app.taskClient
		routerCfg.ExportDir = cfg.Export.Dir
		if app.exportSched != nil {
			routerCfg.ExportSchedule = app.exportSched
		}
	} else if cfg.Export.Enabled {
		logger.Warn("EXPORT_ENABLED requires TASKS_ENABLED, periodic export is off")
	}

	app.Handler = http_controllers.NewHandler(routerCfg)
	return app, nil
}

func newSessionManager(cfg *config.Config, catalog *Catalog, logger *zap.Logger) (*security.SessionManager, error) {
	if catalog.DB.Driver != config.DriverSQLite {
		return security.NewSessionManager(security.NewMemoryStore(), cfg.Security, logger), nil
	}

	sqlDB, err := catalog.DB.SQLDB()
	if err != nil {
		return nil, fmt.Errorf("get SQL DB for sessions: %w", err)
	}
	store, err := security.NewSQLiteStore(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("initialize session store: %w", err)
	}
	return security.NewSessionManager(store, cfg.Security, logger), nil
}

// startTasks opens the task queue, registers the export queue and, when
// configured, the export schedule.
func (a *App) startTasks(cfg *config.Config) error {
	taskCfg := tasks.DefaultConfig()
	taskCfg.Workers = cfg.Tasks.Workers
	taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
	taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval

	client, err := tasks.NewClient(tasksDBPath(cfg), taskCfg, a.logger)
	if err != nil {
		return fmt.Errorf("initialize task queue: %w", err)
	}
	a.taskClient = client

	client.Register(tasks.NewExportCatalogQueue(exporters.NewCSVExporter(a.catalog.Books), a.logger.Named("export")))

	var taskCtx context.Context
	taskCtx, a.taskCtxCancel = context.WithCancel(context.Background())
	go client.Start(taskCtx)

	if cfg.Export.Enabled {
		a.exportSched = scheduler.NewExportScheduler(client, cfg.Export.Schedule, cfg.Export.Dir, a.logger)
		if err := a.exportSched.Start(taskCtx); err != nil {
			return fmt.Errorf("start export scheduler: %w", err)
		}
	}
	return nil
}

// tasksDBPath places the queue next to the sqlite catalog, or next to the
// default path when the catalog lives in postgres.
func tasksDBPath(cfg *config.Config) string {
	if cfg.Database.Path != "" {
		return cfg.Database.Path
	}
	return config.DefaultDatabasePath
}

// Shutdown stops background work and closes the database.
func (a *App) Shutdown(ctx context.Context) {
	if a.writeLimiter != nil {
		a.writeLimiter.Stop()
	}
	if a.exportSched != nil {
		a.exportSched.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
		if a.taskCtxCancel != nil {
			a.taskCtxCancel()
		}
		if err := a.taskClient.Close(); err != nil {
			a.logger.Error("error closing task client", zap.Error(err))
		}
	}
	if err := a.catalog.Close(); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts down within
// the configured timeout.
func Serve(handler http.Handler, cfg *config.Config, logger *zap.Logger, onShutdown func(ctx context.Context)) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			if onShutdown != nil {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				onShutdown(ctx)
			}
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()), zap.Duration("timeout", timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exiting")
	return nil
}

// Run builds the application from cfg and serves it until interrupted.
func Run(cfg *config.Config, version string) error {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting library", zap.String("version", version))

	app, err := Build(cfg, version, logger)
	if err != nil {
		return err
	}

	return Serve(app.Handler, cfg, logger, app.Shutdown)
}
