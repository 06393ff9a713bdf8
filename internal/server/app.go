// Package server wires the broker together and runs it: database and
// migrations, repositories, services, the HTTP API and the OTP sweeper,
// with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/config"
	"github.com/dmitrijs2005/staffgate/internal/server/directory"
	"github.com/dmitrijs2005/staffgate/internal/server/httpapi"
	"github.com/dmitrijs2005/staffgate/internal/server/metrics"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/staffgate/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	otps    *services.OtpService
	server  *httpapi.Server
	metrics *metrics.Metrics
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := build(c, db, rm, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// build assembles services and transport over an open database.
func build(c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	if c.UsesDefaultSecret() {
		logger.Warn(context.Background(), "session tokens are signed with the built-in development key; set -s or secret_key")
	}

	proxies, err := httpapi.ParseTrustedProxies(c.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	m := metrics.New()

	gw := directory.New(directory.Config{
		BaseURL:       c.DirectoryBaseURL,
		APIKey:        c.DirectoryAPIKey,
		Timeout:       c.DirectoryTimeout,
		RatePerSecond: c.DirectoryRatePerSecond,
	}, logger, directory.WithObserver(m.DirectoryOutcome))

	verifier := services.NewPasswordVerifier(db, rm, logger)
	otps := services.NewOtpService(db, rm, c, services.DiscardSender{}, logger)
	otps.OnSweep(m.OtpsSwept)
	broker := services.NewBroker(db, rm, verifier, gw, c, logger)

	handler := httpapi.NewHandler(broker, otps, db, m, logger, httpapi.Options{
		CookieSecure:       c.CookieSecure,
		SessionMaxAge:      c.SessionValidityDuration,
		LoginRatePerSecond: c.LoginRatePerSecond,
		LoginRateBurst:     c.LoginRateBurst,
		TrustedProxies:     proxies,
	})

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		otps:    otps,
		server:  httpapi.NewServer(c.EndpointAddrHTTP, handler, logger),
		metrics: m,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or the HTTP server
// fails, then waits for the server and the sweeper to stop and closes the
// database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.otps.RunCleanup(ctx, app.config.OTPCleanupInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
