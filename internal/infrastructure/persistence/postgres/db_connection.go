// Package postgres provides the gorm-backed persistence layer for the risk engine.
// PostgreSQL is reached through pgx; SQLite backs local development and tests.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/aewis/internal/config"
	"github.com/turtacn/aewis/pkg/errors"
	"github.com/turtacn/aewis/pkg/logger"
)

// Supported database.driver values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DBConnection manages the gorm handle and its connection pool.
type DBConnection struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	config *config.DatabaseConfig
	logger logger.Logger
}

// NewDBConnection opens the configured database, applies pool settings and pings it.
//
// Parameters:
//   - ctx: Context for the initial ping
//   - cfg: Database configuration including driver, credentials, and pool settings
//   - log: Logger instance for connection lifecycle events
//
// Returns:
//   - *DBConnection: Initialized connection manager
//   - error: Connection establishment error if any
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	if cfg == nil {
		return nil, errors.ErrDatabaseConnectionFailed("missing database configuration")
	}
	log = log.WithComponent("DBConnection")

	log.Info(ctx, "Initializing database connection",
		logger.String("driver", cfg.Driver),
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
		logger.Int("max_open_conns", cfg.MaxOpenConns),
	)

	dialector, err := dialectorFor(cfg)
	if err != nil {
		log.Error(ctx, "Failed to build database dialector", err)
		return nil, errors.ErrDatabaseConnectionFailed(err.Error()).WithCause(err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Error(ctx, "Failed to open database", err)
		return nil, errors.ErrDatabaseConnectionFailed(err.Error()).WithCause(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.ErrDatabaseConnectionFailed(err.Error()).WithCause(err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	conn := &DBConnection{db: db, sqlDB: sqlDB, config: cfg, logger: log}
	if err := conn.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := conn.AutoMigrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	log.Info(ctx, "Database connection initialized successfully",
		logger.Int("open_conns", sqlDB.Stats().OpenConnections),
	)
	return conn, nil
}

// NewDBConnectionFromGorm wraps an already opened gorm handle.
func NewDBConnectionFromGorm(db *gorm.DB, log logger.Logger) (*DBConnection, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &DBConnection{db: db, sqlDB: sqlDB, config: &config.DatabaseConfig{}, logger: log.WithComponent("DBConnection")}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		pgxCfg, err := pgx.ParseConfig(cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return gormpostgres.New(gormpostgres.Config{Conn: stdlib.OpenDB(*pgxCfg)}), nil
	case DriverSQLite, "":
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// DB returns the gorm handle used by the repositories.
func (c *DBConnection) DB() *gorm.DB {
	return c.db
}

// AutoMigrate creates or updates the observation, ledger and generation tables.
func (c *DBConnection) AutoMigrate(ctx context.Context) error {
	if err := c.db.WithContext(ctx).AutoMigrate(&riskRecordDBM{}, &interventionDBM{}, &collegeGenerationDBM{}); err != nil {
		c.logger.Error(ctx, "Schema migration failed", err)
		return fmt.Errorf("%w: %v", errors.ErrDatabaseOperation, err)
	}
	c.logger.Info(ctx, "Schema migrated")
	return nil
}

// Ping verifies database connectivity and responsiveness.
func (c *DBConnection) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startTime := time.Now()
	if err := c.sqlDB.PingContext(pingCtx); err != nil {
		c.logger.Error(ctx, "Database ping failed", err)
		return errors.ErrDatabaseConnectionFailed(err.Error()).WithCause(err)
	}

	latency := time.Since(startTime)
	if latency > 100*time.Millisecond {
		c.logger.Warn(ctx, "High database latency detected",
			logger.Int64("latency_ms", latency.Milliseconds()),
			logger.Int("threshold_ms", 100),
		)
	}
	return nil
}

// HealthCheck pings the database and reports pool statistics.
func (c *DBConnection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	stats := c.sqlDB.Stats()
	return map[string]interface{}{
		"status":           "healthy",
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration_ms": stats.WaitDuration.Milliseconds(),
		"max_open":         stats.MaxOpenConnections,
	}, nil
}

// Stats returns current connection pool statistics.
func (c *DBConnection) Stats() sql.DBStats {
	return c.sqlDB.Stats()
}

// Close shuts down the connection pool.
func (c *DBConnection) Close() error {
	c.logger.Info(context.Background(), "Closing database connection pool",
		logger.Int("open_conns", c.sqlDB.Stats().OpenConnections),
	)
	return c.sqlDB.Close()
}
