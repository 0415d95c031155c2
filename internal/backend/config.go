package backend

import (
	"errors"
	"fmt"

	"hisab/internal/config"
)

const (
	defaultChartCacheSize   = 500
	defaultAMQPDialAttempts = 3
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	driver := Driver(appConfig.DatabaseDriver)
	if !driver.IsValid() {
		return Config{}, fmt.Errorf("invalid database driver in config: %s", appConfig.DatabaseDriver)
	}

	return Config{
		Driver:       driver,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DatabaseURL:  appConfig.DatabaseURL,

		AMQPURL:          appConfig.AMQPURL,
		AMQPExchange:     appConfig.AMQPExchange,
		AMQPQueue:        appConfig.AMQPQueue,
		AMQPDialAttempts: defaultAMQPDialAttempts,

		ChartCacheSize: defaultChartCacheSize,
		ChartCacheTTL:  appConfig.ChartCacheTTL,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Driver.IsValid() {
		return fmt.Errorf("invalid database driver: %s", c.Driver)
	}

	switch c.Driver {
	case SQLiteDriver:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for the sqlite driver")
		}
	case PostgresDriver:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required for the postgres driver")
		}
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return errors.New("AMQP exchange and queue are required when AMQP is enabled")
	}
	return nil
}
