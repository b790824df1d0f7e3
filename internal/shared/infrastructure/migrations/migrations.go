// Package migrations applies the embedded schema to the relational store.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

type dialect struct {
	dir    string
	check  string
	record string
}

var (
	sqliteDialect = dialect{
		dir:    "sqlite",
		check:  "SELECT COUNT(*) FROM schema_migrations WHERE version = ?",
		record: "INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
	}
	postgresDialect = dialect{
		dir:    "postgres",
		check:  "SELECT COUNT(*) FROM schema_migrations WHERE version = $1",
		record: "INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)",
	}
)

// RunSQLite applies pending migrations to an open SQLite handle.
func RunSQLite(ctx context.Context, db *sql.DB) error {
	return apply(ctx, db, sqliteDialect)
}

// RunPostgres applies pending migrations to the Postgres database at url.
// Migrations use their own lib/pq handle so they run before the pgx pool
// serves traffic.
func RunPostgres(ctx context.Context, url string) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("open postgres for migrations: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres for migrations: %w", err)
	}
	return apply(ctx, db, postgresDialect)
}

// Versions lists the embedded migrations for a dialect in apply order.
func Versions(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dialect, err)
	}

	var versions []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			versions = append(versions, strings.TrimSuffix(name, ".up.sql"))
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func apply(ctx context.Context, db *sql.DB, d dialect) error {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	versions, err := Versions(d.dir)
	if err != nil {
		return err
	}

	for _, version := range versions {
		var applied int
		if err := db.QueryRowContext(ctx, d.check, version).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		body, err := files.ReadFile(d.dir + "/" + version + ".up.sql")
		if err != nil {
			return fmt.Errorf("read migration %s: %w", version, err)
		}
		if err := applyOne(ctx, db, d, version, string(body)); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(ctx context.Context, db *sql.DB, d dialect, version, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("execute migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, d.record, version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	return tx.Commit()
}
