package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/nezpik/pistology-tos/internal/auditlog"
	"github.com/nezpik/pistology-tos/internal/config"
	"github.com/nezpik/pistology-tos/internal/edi/ingest"
	"github.com/nezpik/pistology-tos/internal/edi/watch"
	"github.com/nezpik/pistology-tos/internal/httpapi"
	"github.com/nezpik/pistology-tos/internal/logging"
	"github.com/nezpik/pistology-tos/internal/storage/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP ingestion server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	notify := logging.New(logging.Options{
		FilePath:   cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Debug:      cfg.LogDebug,
	})

	store, err := openStoreLocked(cfg.DBPath, cfg.DBPoolSize)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	auditLog, err := auditlog.Open(cfg.AuditPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}

	coordinator := ingest.New(store, notify, auditLog)

	requestTimeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		requestTimeout = 30 * time.Second
	}
	server := httpapi.NewServer(coordinator, store, notify, httpapi.Options{
		MaxConns:       cfg.MaxConns,
		RequestTimeout: requestTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var folderWatcher *watch.Watcher
	if cfg.WatchDir != "" {
		folderWatcher, err = watch.New(cfg.WatchDir, coordinator, notify)
		if err != nil {
			notify.Warnf("folder watcher disabled: %v", err)
		} else {
			folderWatcher.Start(ctx)
			defer func() { _ = folderWatcher.Close() }()
		}
	}

	notify.Infof("tosd serving on %s (db=%s)", cfg.HTTPAddr, cfg.DBPath)
	return server.ListenAndServe(ctx, cfg.HTTPAddr)
}

// openStoreLocked acquires an advisory lock on dbPath while sqlite.Open
// applies the base schema and any pending migrations, so two processes
// racing to open a fresh database don't both attempt CREATE TABLE.
func openStoreLocked(dbPath string, poolSize int) (*sqlite.Store, error) {
	lock := flock.New(dbPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring database lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	return sqlite.Open(dbPath, poolSize)
}
