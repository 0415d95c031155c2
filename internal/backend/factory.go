package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hisab/internal/amqp"
	"hisab/internal/cache"
	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/services"
	"hisab/internal/storage"
)

const cacheCleanupInterval = 10 * time.Minute

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend. A broker that cannot be
// reached is logged and the ledger runs without change events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := OpenRepository(ctx, config)
	if err != nil {
		return nil, err
	}

	size := config.ChartCacheSize
	if size <= 0 {
		size = defaultChartCacheSize
	}
	charts := cache.NewLRUCache[core.ChartData](size, config.ChartCacheTTL)
	caches := cache.NewManager(f.logger.Logger)
	caches.Register(charts)
	caches.StartCleanup(cacheCleanupInterval)

	opts := []services.Option{
		services.WithChartCache(charts),
		services.WithLogger(f.logger),
	}

	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = amqp.DialWithRetry(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, config.AMQPDialAttempts)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
				applog.FieldError, err.Error(),
				applog.FieldErrorType, applog.ErrorTypeNetwork)
			events = nil
		} else {
			opts = append(opts, services.WithEvents(events))
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"driver", config.Driver.String(),
		"amqp_enabled", events != nil,
		"chart_cache_ttl", config.ChartCacheTTL.String())

	return &BackendResult{
		Repo:   repo,
		Ledger: services.NewLedger(repo, opts...),
		Events: events,
		Charts: charts,
		Caches: caches,
		Cleanup: func() error {
			caches.Stop()
			var errs []error
			if events != nil {
				errs = append(errs, events.Close())
			}
			errs = append(errs, repo.Close())
			return errors.Join(errs...)
		},
	}, nil
}

// OpenRepository opens and migrates the configured database.
func OpenRepository(ctx context.Context, config Config) (*storage.Repository, error) {
	var (
		repo *storage.Repository
		err  error
	)
	switch config.Driver {
	case SQLiteDriver:
		repo, err = storage.NewSQLiteRepository(ctx, config.SQLiteDBPath)
	case PostgresDriver:
		repo, err = storage.NewPostgresRepository(ctx, config.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", config.Driver, err)
	}
	return repo, nil
}
