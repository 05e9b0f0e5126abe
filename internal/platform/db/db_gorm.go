// Package db opens the SQL dividend source.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dividend_dashboard/internal/config"
)

// retryInterval is the pause between connection attempts.
const retryInterval = 3 * time.Second

// Opener opens a database for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// OpenerFor returns the Opener for a configured driver.
func OpenerFor(driver string) (Opener, error) {
	var dial func(string) gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dial = postgres.Open
	case config.DriverSQLite:
		dial = sqlite.Open
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return func(dsn string) (*gorm.DB, error) {
		return gorm.Open(dial(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}, nil
}

// ConnectWithRetry opens dsn, retrying every few seconds until timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		zap.L().Warn("db connect failed, retrying", zap.Error(err))
		time.Sleep(retryInterval)
	}
}

// OpenDB connects to the configured SQL source.
func OpenDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(cfg.DSN, 60*time.Second, open)
	if err != nil {
		return nil, err
	}
	zap.L().Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}
