package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type connectOptions struct {
	applicationName string
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
}

// Option tunes Connect.
type Option func(*connectOptions)

// WithApplicationName tags the connections so pg_stat_activity tells the
// api, worker and purger apart while they wait on session row locks.
func WithApplicationName(name string) Option {
	return func(o *connectOptions) {
		o.applicationName = strings.TrimSpace(name)
	}
}

// WithPool bounds the connection pool. Non-positive values keep the default.
func WithPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(o *connectOptions) {
		if maxOpen > 0 {
			o.maxOpenConns = maxOpen
		}
		if maxIdle > 0 {
			o.maxIdleConns = maxIdle
		}
		if maxLifetime > 0 {
			o.connMaxLifetime = maxLifetime
		}
	}
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
func Connect(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	options := connectOptions{maxOpenConns: 20, maxIdleConns: 5, connMaxLifetime: 30 * time.Minute}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	db, err := gorm.Open(postgres.Open(withApplicationName(dsn, options.applicationName)), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(options.maxOpenConns)
	sqlDB.SetMaxIdleConns(options.maxIdleConns)
	sqlDB.SetConnMaxLifetime(options.connMaxLifetime)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectFromEnv dials PostgreSQL using POSTGRES_DSN and returns the DB plus a cleanup function.
// When POSTGRES_DSN is missing or the connection fails, it logs and returns nil with a no-op cleanup.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger, opts ...Option) (*gorm.DB, func()) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		if logger != nil {
			logger.Warn("POSTGRES_DSN not set")
		}
		return nil, func() {}
	}
	db, err := Connect(ctx, dsn, opts...)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to postgres", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		if logger != nil {
			logger.Warn("failed to unwrap postgres connection", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("postgres connection established")
	}
	return db, func() { _ = sqlDB.Close() }
}

// withApplicationName adds application_name to both URL and key=value DSNs
// unless the DSN already sets one.
func withApplicationName(dsn, name string) string {
	if name == "" || strings.Contains(dsn, "application_name") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("application_name", name)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn) + " application_name=" + name
}
