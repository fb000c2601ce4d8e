// Package migrations applies the embedded SQL schema in lexical file order.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// advisoryLockID serializes concurrent migrators on the same database.
const advisoryLockID = 74_310_001

var ErrMigrate = errors.New("migrations: failed to apply migrations")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Files returns migration file names in application order.
func Files() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Up applies every migration not yet recorded in schema_migrations.
// Each file runs in its own transaction.
func Up(ctx context.Context, db *sql.DB, logger Logger) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %v", ErrMigrate, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockID); err != nil {
		return fmt.Errorf("%w: advisory lock: %v", ErrMigrate, err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockID)
	}()

	if _, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("%w: create schema_migrations: %v", ErrMigrate, err)
	}

	names, err := Files()
	if err != nil {
		return fmt.Errorf("%w: list files: %v", ErrMigrate, err)
	}

	for _, name := range names {
		var applied bool
		if err := conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
		).Scan(&applied); err != nil {
			return fmt.Errorf("%w: check %s: %v", ErrMigrate, name, err)
		}
		if applied {
			continue
		}

		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrMigrate, name, err)
		}

		if err := apply(ctx, conn, name, string(body)); err != nil {
			return err
		}
		logger.Info("Migrations: applied %s", name)
	}

	return nil
}

func apply(ctx context.Context, conn *sql.Conn, name, body string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin %s: %v", ErrMigrate, name, err)
	}

	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: apply %s: %v", ErrMigrate, name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: record %s: %v", ErrMigrate, name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", ErrMigrate, name, err)
	}
	return nil
}
