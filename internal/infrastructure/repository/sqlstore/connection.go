package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"measures-service/internal/infra"
)

const (
	defaultPostgresPort = "5432"
	pingTimeout         = 5 * time.Second
)

// ConnConfig holds the pool settings applied by Connect.
type ConnConfig struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Connect opens a SQL database handle and pings it before returning.
func Connect(ctx context.Context, cfg ConnConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("db: DSN is required")
	}

	db, err := sql.Open(cfg.Dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: open connection: %w", err)
	}

	applyPoolSettings(db, cfg)

	pingCtx, cancel := contextForPing(ctx)
	if cancel != nil {
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, classify("ping", err)
	}

	return db, nil
}

func applyPoolSettings(db *sql.DB, cfg ConnConfig) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 15
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	// Every connection to an in-memory SQLite database sees its own database.
	if cfg.Dialect == SQLite && isMemoryDSN(cfg.DSN) {
		maxOpen, maxIdle = 1, 1
	}

	idleTime := cfg.ConnMaxIdleTime
	if idleTime <= 0 {
		idleTime = 5 * time.Minute
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxIdleTime(idleTime)
	db.SetConnMaxLifetime(lifetime)
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func contextForPing(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, nil
	}
	return context.WithTimeout(ctx, pingTimeout)
}

// ShouldCheckDatabase determines if TCP reachability should be probed before connecting.
func ShouldCheckDatabase(cfg infra.Config) bool {
	if cfg.DatabaseDriver == string(SQLite) {
		return false
	}
	if cfg.DatabaseDSN != "" {
		return true
	}
	return cfg.DatabaseHost != ""
}

// WaitForDatabase probes the configured host/port until it becomes reachable or context cancellation.
func WaitForDatabase(ctx context.Context, cfg infra.Config, logger *infra.Logger) error {
	host := cfg.DatabaseHost
	port := cfg.DatabasePort

	if (host == "" || port == "") && cfg.DatabaseDSN != "" {
		parsed, err := url.Parse(cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		if host == "" {
			host = parsed.Hostname()
		}
		if port == "" {
			port = parsed.Port()
		}
	}

	if host == "" {
		return nil
	}
	if port == "" {
		port = defaultPostgresPort
	}

	address := net.JoinHostPort(host, port)
	dialer := &net.Dialer{Timeout: 3 * time.Second}

	const maxAttempts = 5
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		logger.Printf(ctx, "database check attempt %d failed: %v", attempt, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return fmt.Errorf("database not reachable at %s", address)
}

// BuildDatabaseDSN constructs a DSN from discrete configuration values when not provided explicitly.
func BuildDatabaseDSN(cfg infra.Config) (string, error) {
	if cfg.DatabaseDSN != "" {
		return cfg.DatabaseDSN, nil
	}
	if cfg.DatabaseDriver == string(SQLite) {
		if cfg.DatabaseName == "" {
			return "", errors.New("database name is required for sqlite3 when DSN is not provided")
		}
		return "file:" + cfg.DatabaseName + "?mode=ro", nil
	}

	if cfg.DatabaseHost == "" {
		return "", errors.New("database host is required when DSN is not provided")
	}
	if cfg.DatabaseUser == "" {
		return "", errors.New("database user is required when DSN is not provided")
	}
	if cfg.DatabaseName == "" {
		return "", errors.New("database name is required when DSN is not provided")
	}

	port := cfg.DatabasePort
	if port == "" {
		port = defaultPostgresPort
	}

	connectionURL := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.DatabaseHost, port),
		Path:   "/" + cfg.DatabaseName,
		User:   url.UserPassword(cfg.DatabaseUser, cfg.DatabasePassword),
	}

	query := connectionURL.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	connectionURL.RawQuery = query.Encode()

	return connectionURL.String(), nil
}

// Open builds the DSN, connects and wraps the pool in a Store. The returned
// cleanup closes the pool.
func Open(ctx context.Context, cfg infra.Config, logger *infra.Logger) (*Store, func(), error) {
	dialect, err := DialectFor(cfg.DatabaseDriver)
	if err != nil {
		return nil, nil, err
	}

	dsn, err := BuildDatabaseDSN(cfg)
	if err != nil {
		return nil, nil, err
	}

	if parsed, parseErr := url.Parse(dsn); parseErr == nil && dialect == Postgres {
		logger.Printf(ctx, "connecting to DSN host=%s db=%s user=%s",
			parsed.Hostname(), strings.TrimPrefix(parsed.Path, "/"), parsed.User.Username())
	}

	db, err := Connect(ctx, ConnConfig{
		Dialect:      dialect,
		DSN:          dsn,
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
	})
	if err != nil {
		return nil, nil, err
	}

	store, err := New(db, dialect, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(ctx, err, "failed to close measurement store")
		}
	}

	return store, cleanup, nil
}
