package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/store/memory"
)

// Open wires the backend named by cfg.DataBackend. The AMQP client is
// optional for the sqlite backend: a broker that is down at boot is
// logged and skipped, the reconcile sweep covers the gap.
func Open(cfg *config.Config, logger *applog.Logger) (*Result, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	switch cfg.DataBackend {
	case "memory":
		return openMemory(logger), nil
	case "sqlite":
		return openSQLite(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported data backend %q", cfg.DataBackend)
	}
}

func openMemory(logger *applog.Logger) *Result {
	st := memory.New()
	logger.Info("Initialized memory backend")
	return &Result{
		Stores: Stores{
			Transactions: st,
			Budgets:      st,
			Preferences:  st,
		},
	}
}

func openSQLite(cfg *config.Config, logger *applog.Logger) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		publisher, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mirror publishing", "error", err)
			publisher = nil
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	cleanup := func() error {
		var errs []error
		if publisher != nil {
			errs = append(errs, publisher.Close())
		}
		errs = append(errs, repo.Close())
		return errors.Join(errs...)
	}

	return &Result{
		Stores: Stores{
			Transactions: repo,
			Budgets:      repo,
			Preferences:  repo,
		},
		Publisher: publisher,
		Cleanup:   cleanup,
	}, nil
}
