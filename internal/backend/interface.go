package backend

import (
	"context"
	"time"

	"hisab/internal/amqp"
	"hisab/internal/cache"
	"hisab/internal/core"
	"hisab/internal/services"
	"hisab/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything the API server runs on.
type BackendResult struct {
	Repo   *storage.Repository
	Ledger *services.Ledger
	// Events is nil when change events are disabled or the broker was unreachable.
	Events *amqp.Client
	Charts *cache.LRUCache[core.ChartData]
	Caches *cache.Manager
	// Cleanup releases the broker connection, cache janitor and database.
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens storage and wires the ledger on top of it.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Driver Driver

	SQLiteDBPath string
	DatabaseURL  string

	// Empty AMQPURL disables change events.
	AMQPURL          string
	AMQPExchange     string
	AMQPQueue        string
	AMQPDialAttempts int

	ChartCacheSize int
	ChartCacheTTL  time.Duration
}

// Driver selects the database engine.
type Driver string

const (
	SQLiteDriver   Driver = "sqlite"
	PostgresDriver Driver = "postgres"
)

// String implements fmt.Stringer
func (d Driver) String() string {
	return string(d)
}

// IsValid returns true if the driver is supported
func (d Driver) IsValid() bool {
	switch d {
	case SQLiteDriver, PostgresDriver:
		return true
	default:
		return false
	}
}
