package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lunaricorn/lunaricorn/pkg/config"
	"github.com/lunaricorn/lunaricorn/pkg/log"
)

var (
	// ErrNotFound is returned by single-row fetches when no row matches.
	ErrNotFound = errors.New("record not found")
)

const (
	connectTimeout   = 10 * time.Second
	statementTimeout = 30 * time.Second
)

// Adapter owns the process's connection to the relational store. It holds
// exactly one serialized connection; callers are serialized through the
// adapter mutex, so at most one statement is in flight at a time.
type Adapter struct {
	mu sync.Mutex

	db      *sqlx.DB
	dsn     string
	appName string
	logger  zerolog.Logger
}

// DSN renders a pgx connection string with connect timeout, statement
// timeout, and application name applied.
func DSN(cfg config.DB, appName string) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	opts := url.Values{}
	opts.Set("connect_timeout", fmt.Sprintf("%d", int(connectTimeout.Seconds())))
	opts.Set("application_name", appName)
	opts.Set("options", fmt.Sprintf("-c statement_timeout=%d", statementTimeout.Milliseconds()))
	opts.Set("sslmode", "disable")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: opts.Encode(),
	}
	return u.String()
}

// Open connects to the store and verifies the connection with a ping.
func Open(ctx context.Context, cfg config.DB, appName string) (*Adapter, error) {
	if !cfg.Valid() {
		return nil, fmt.Errorf("invalid database config for %s", appName)
	}

	a := &Adapter{
		dsn:     DSN(cfg, appName),
		appName: appName,
		logger:  log.WithComponent("database"),
	}
	if err := a.connect(ctx); err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("application", appName).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.Name).
		Msg("database connection initialized")
	return a, nil
}

// NewWithDB wraps an existing database handle. Used by tests to inject a
// mocked connection.
func NewWithDB(db *sql.DB, driverName string) *Adapter {
	return &Adapter{
		db:     sqlx.NewDb(db, driverName),
		logger: log.WithComponent("database"),
	}
}

func (a *Adapter) connect(ctx context.Context) error {
	db, err := sqlx.Open("pgx", a.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One serialized connection; the adapter mutex does the serializing.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	return nil
}

// Validate pings the store and reconnects once when the ping fails. It
// returns the reconnect error if both the ping and the reconnect fail.
func (a *Adapter) Validate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validateLocked(ctx)
}

func (a *Adapter) validateLocked(ctx context.Context) error {
	if a.db != nil {
		if err := a.db.PingContext(ctx); err == nil {
			return nil
		}
		a.logger.Warn().Msg("database connection lost, attempting to reconnect")
		a.db.Close()
		a.db = nil
	}
	if a.dsn == "" {
		return errors.New("database connection is closed")
	}
	if err := a.connect(ctx); err != nil {
		return fmt.Errorf("failed to reconnect to database: %w", err)
	}
	a.logger.Info().Msg("database connection re-established")
	return nil
}

// Execute runs fn inside a short-lived transaction under the adapter mutex.
// The transaction commits when fn returns nil and rolls back otherwise. When
// the failure looks like a lost connection the adapter reconnects once and
// retries fn; the original failure surfaces if the reconnect fails.
func (a *Adapter) Execute(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.runTx(ctx, fn)
	if err == nil || !isConnErr(err) {
		return err
	}

	a.logger.Warn().Err(err).Msg("statement failed on broken connection, retrying once")
	if vErr := a.validateLocked(ctx); vErr != nil {
		return err
	}
	return a.runTx(ctx, fn)
}

func (a *Adapter) runTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if a.db == nil {
		return driver.ErrBadConn
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			a.logger.Debug().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Install runs an idempotent schema closure in its own transaction. Each
// subsystem registers its tables and indexes through Install at every
// process start.
func (a *Adapter) Install(ctx context.Context, name string, fn func(tx *sqlx.Tx) error) error {
	if err := a.Execute(ctx, fn); err != nil {
		return fmt.Errorf("failed to install schema %s: %w", name, err)
	}
	a.logger.Info().Str("schema", name).Msg("ensured tables and indexes exist")
	return nil
}

// Close releases the underlying connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// isConnErr classifies failures that justify a reconnect-and-retry. Schema
// and constraint violations are permanent and must not be retried.
func isConnErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"unexpected eof",
		"conn closed",
		"database is closed",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
