package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/router-for-me/InvoiceDrafter/internal/config"
	"github.com/router-for-me/InvoiceDrafter/internal/db"
	"github.com/router-for-me/InvoiceDrafter/internal/draft"
	bridge "github.com/router-for-me/InvoiceDrafter/internal/http"
	"github.com/router-for-me/InvoiceDrafter/internal/logging"
	"github.com/router-for-me/InvoiceDrafter/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App owns the opened settings database and everything built on it.
type App struct {
	cfg        config.Config
	configPath string

	conn      *gorm.DB
	store     *settings.Store
	pipeline  *draft.Pipeline
	handler   http.Handler
	logCloser io.Closer
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, appCfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(appCfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()
	if errMigrate := db.Migrate(ctx, conn); errMigrate != nil {
		return errMigrate
	}
	log.WithField("dialect", db.DialectName(conn)).Info("migrations applied")
	return nil
}

// Open loads the configuration, sets up logging, opens and migrates the settings database and
// builds the draft pipeline and its bridge handler.
func Open(ctx context.Context, appCfg config.AppConfig) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	configPath := config.ResolveConfigPath(appCfg.ConfigPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(ctx, cfg.Database.DSN)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("%w: %w", settings.ErrStoreUnavailable, err)
	}
	if errMigrate := db.Migrate(ctx, conn); errMigrate != nil {
		_ = db.Close(conn)
		_ = logCloser.Close()
		return nil, fmt.Errorf("%w: %w", settings.ErrStoreUnavailable, errMigrate)
	}
	store, err := settings.Open(conn)
	if err != nil {
		_ = db.Close(conn)
		_ = logCloser.Close()
		return nil, err
	}

	pipeline := draft.NewPipeline(store, draft.WithExporter(draft.JSONExporter{Dir: cfg.Output.Directory}))
	a := &App{
		cfg:        cfg,
		configPath: configPath,
		conn:       conn,
		store:      store,
		pipeline:   pipeline,
		handler:    bridge.NewHandler(pipeline),
		logCloser:  logCloser,
	}
	log.WithFields(log.Fields{
		"config":  configPath,
		"dialect": db.DialectName(conn),
		"output":  cfg.Output.Directory,
	}).Info("invoice drafter ready")
	return a, nil
}

// Config returns the resolved configuration.
func (a *App) Config() config.Config { return a.cfg }

// ConfigPath returns the config file the app was opened with, which may not exist.
func (a *App) ConfigPath() string { return a.configPath }

// Pipeline returns the draft pipeline.
func (a *App) Pipeline() *draft.Pipeline { return a.pipeline }

// Handler returns the in-process bridge for the desktop shell.
func (a *App) Handler() http.Handler { return a.handler }

// Close discards unsaved values and releases the database and log file.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.conn != nil {
		errs = append(errs, db.Close(a.conn))
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
