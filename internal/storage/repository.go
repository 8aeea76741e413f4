package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	applog "payplan/internal/log"
	"payplan/internal/reconcile"
)

const pragmas = "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"

// SQLiteRepository is the SQLite-backed store. Reads go through the embedded
// Queries on the pool; WithinTx hands out a transaction-scoped Queries.
type SQLiteRepository struct {
	*Queries
	db     *sql.DB
	dsn    string
	logger *applog.Logger
}

var _ reconcile.Store = (*SQLiteRepository)(nil)

// DSN builds the modernc connection string for a database file.
func DSN(dbPath string) string {
	return "file:" + dbPath + pragmas
}

// NewSQLiteRepository opens the database at dbPath, creating its directory,
// and applies pending migrations.
func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Default()
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, err
	}
	if v, _, err := MigrationVersion(dsn); err == nil {
		logger.Info("Database ready", "path", dbPath, "schema_version", v)
	}

	return &SQLiteRepository{Queries: New(db), db: db, dsn: dsn, logger: logger}, nil
}

// Close closes the connection pool.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the health endpoint.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithinTx runs fn inside one SQL transaction. Any error from fn, or a
// failed commit, leaves the database untouched.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(tx reconcile.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(r.Queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
