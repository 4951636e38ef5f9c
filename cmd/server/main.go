/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the indemnity engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Build the zap logger
  3. Open the configured store (memory, sqlite, postgres)
  4. Import the dataset files when import_on_start is set
  5. Publish the first snapshot and start the refresher
  6. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config     YAML configuration file (default: indemnity.yml if present)
  -log-level  Overrides logging.level

POLICIES:
  Rates come from the policy section of the configuration. policy.file
  may name a JSON document (see factory/policy.go) that replaces them.

ENVIRONMENT:
  Every key can be overridden as INDEMNITY_<SECTION>_<KEY>, e.g.
  INDEMNITY_STORAGE_DSN=postgres://... INDEMNITY_SERVER_PORT=3000

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the refresher
  4. Close database connection

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - api/server.go: Router configuration
  - api/refresher.go: Snapshot reload
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/laborcalc/indemnity-engine/api"
	"github.com/laborcalc/indemnity-engine/config"
	"github.com/laborcalc/indemnity-engine/factory"
	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/generic/store"
	"github.com/laborcalc/indemnity-engine/ingest"
	"github.com/laborcalc/indemnity-engine/observability/metrics"
	"github.com/laborcalc/indemnity-engine/store/postgres"
	"github.com/laborcalc/indemnity-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	if *configPath == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			*configPath = config.DefaultConfigFile
		}
	}

	conf, err := config.LoadConfiguration(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(conf, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(conf *config.Configuration, logger *zap.Logger) error {
	ctx := context.Background()
	metrics.Init()

	st, err := openStore(ctx, conf.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store opened", zap.String("driver", conf.Storage.Driver))

	sources := ingest.DefaultSources(conf.Datasets.Dir)
	for name, file := range conf.Datasets.Files {
		sources.Files[name] = file
	}
	importer := &ingest.Importer{Sources: sources, Repo: st, Logger: logger}

	if conf.Datasets.ImportOnStart {
		if _, err := importer.ImportAll(ctx); err != nil {
			logger.Warn("dataset import incomplete", zap.Error(err))
		}
	}

	holder := generic.NewSnapshotHolder(nil)
	refresher := api.NewSnapshotRefresher(st, holder, logger)
	refresher.Enabled = conf.Refresh.Enabled
	refresher.Interval = conf.Refresh.Interval
	if _, err := refresher.Reload(ctx); err != nil {
		logger.Warn("initial snapshot load failed, serving empty datasets", zap.Error(err))
	}
	refresher.Start()
	defer refresher.Stop()

	handler, err := newHandler(conf, holder, st, logger)
	if err != nil {
		return err
	}
	handler.Importer = importer
	handler.Refresher = refresher

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", conf.Server.Port),
		Handler:      api.NewRouter(handler, conf.Server.AllowedOrigins),
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
		IdleTimeout:  conf.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", conf.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (generic.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "postgres":
		return postgres.New(ctx, cfg.DSN)
	default:
		return sqlite.New(cfg.DSN)
	}
}

func newHandler(conf *config.Configuration, holder *generic.SnapshotHolder, st generic.Store, logger *zap.Logger) (*api.Handler, error) {
	pf := factory.NewPolicyFactory()
	sev, inj, err := pf.FromConfig(conf.Policy)
	if err != nil {
		return nil, err
	}
	if conf.Policy.File != "" {
		raw, err := os.ReadFile(conf.Policy.File)
		if err != nil {
			return nil, fmt.Errorf("read policy file: %w", err)
		}
		if sev, inj, err = pf.ParsePolicies(string(raw)); err != nil {
			return nil, fmt.Errorf("policy file %s: %w", conf.Policy.File, err)
		}
		logger.Info("policies loaded", zap.String("file", conf.Policy.File))
	}

	h := api.NewHandler(holder, st, logger)
	h.MaxUploadBytes = conf.Server.MaxUploadBytes
	if conf.Server.AdminRate > 0 {
		h.AdminLimiter = rate.NewLimiter(rate.Limit(conf.Server.AdminRate), conf.Server.AdminBurst)
	}
	h.Severance = sev
	h.Injury = inj
	return h, nil
}
