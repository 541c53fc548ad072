// Package database provides the core functionality for creating and
// managing the gallery database connection.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/pkg/config"
)

// DB wraps the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver string
}

// Connect opens the gallery database. A configured libsql URL selects
// the remote Turso driver; otherwise the local SQLite file is used.
func Connect(logger *logging.ChanneledLogger) (*DB, error) {
	driver := "sqlite3"
	dsn := config.SQLitePath
	if config.LibsqlURL != "" {
		driver = "libsql"
		dsn = config.LibsqlURL
		if config.LibsqlAuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", config.LibsqlURL, config.LibsqlAuthToken)
		}
	}

	start := time.Now()
	logger.Database().Debug("Creating database connection", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driver", driver)
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		logger.Database().Error("Database ping failed", "error", err.Error(), "driver", driver)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Database().Info("Database connection established",
		"driver", driver, "duration", time.Since(start))

	return &DB{DB: db, Driver: driver}, nil
}

// Status reports basic connection pool health for the status endpoint.
func (db *DB) Status() map[string]any {
	stats := db.DB.Stats()
	return map[string]any{
		"driver":          db.Driver,
		"openConnections": stats.OpenConnections,
		"inUse":           stats.InUse,
		"idle":            stats.Idle,
		"waitCount":       stats.WaitCount,
	}
}
