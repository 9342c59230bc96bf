package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultIndexer/internal/config"
	"vaultIndexer/internal/indexer"
	"vaultIndexer/internal/manifest"
	"vaultIndexer/internal/mapping"
	"vaultIndexer/internal/metrics"
	"vaultIndexer/internal/storage"
	"vaultIndexer/internal/storage/postgres"
	"vaultIndexer/internal/storage/sqlite"
)

func runProject(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadProject(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return err
	}
	bindings, err := selectBindings(m.Bindings(), cfg.DataSources)
	if err != nil {
		return err
	}

	if cfg.Store == config.StoreMemory && cfg.CheckpointEnabled {
		logger.Warn("checkpoint disabled for memory store", zap.String("checkpoint", cfg.Checkpoint))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, checkpoint, closeStore, err := openStore(ctx, cfg, bindings)
	if err != nil {
		return err
	}
	defer closeStore()

	errWriter, err := newJSONLWriter(cfg.Errors, true)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	var collector *metrics.Metrics
	if cfg.MetricsAddr != "" {
		collector = metrics.Init()
		server := serveMetrics(cfg.MetricsAddr, logger)
		defer shutdownServer(server)
	}

	runner, err := indexer.NewRunner(indexer.RunConfig{
		InputPath:    cfg.In,
		Bindings:     bindings,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, store,
		indexer.WithCheckpoint(checkpoint),
		indexer.WithErrorWriter(errWriter),
		indexer.WithMetrics(collector),
		indexer.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("projection start",
		zap.String("in", cfg.In),
		zap.String("manifest", cfg.Manifest),
		zap.Int("data_sources", len(bindings)),
		zap.String("store", cfg.Store),
		zap.String("store_path", cfg.StorePath),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	_, err = runner.Run(ctx)
	return err
}

func selectBindings(all []manifest.Binding, names []string) ([]manifest.Binding, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]manifest.Binding, len(all))
	for _, b := range all {
		byName[b.Name] = b
	}
	out := make([]manifest.Binding, 0, len(names))
	for _, name := range names {
		b, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("data source %q not in manifest", name)
		}
		out = append(out, b)
	}
	return out, nil
}

// openStore builds the entity store and the checkpoint that belongs with it.
// Database stores keep the checkpoint in the same database.
func openStore(ctx context.Context, cfg config.ProjectConfig, bindings []manifest.Binding) (mapping.Store, indexer.CheckpointStore, func(), error) {
	fileCheckpoint := indexer.NewFileCheckpointStore(cfg.Checkpoint, cfg.FileCheckpointEnabled())
	cursorName := checkpointName(bindings)

	switch cfg.Store {
	case config.StoreMemory:
		return storage.NewMemoryStore(), fileCheckpoint, func() {}, nil

	case config.StoreJSONL:
		return storage.NewJsonlStore(cfg.StorePath), fileCheckpoint, func() {}, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			return nil, nil, nil, err
		}
		var cp indexer.CheckpointStore = fileCheckpoint
		if cfg.CheckpointEnabled {
			cp = indexer.NewStoreCheckpoint(store, cursorName)
		}
		return store, cp, func() { store.Close() }, nil

	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		var cp indexer.CheckpointStore = fileCheckpoint
		if cfg.CheckpointEnabled {
			cp = indexer.NewStoreCheckpoint(store, cursorName)
		}
		return store, cp, store.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported store: %q", cfg.Store)
	}
}

func checkpointName(bindings []manifest.Binding) string {
	if len(bindings) == 1 {
		return bindings[0].Name
	}
	return "project"
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return server
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
