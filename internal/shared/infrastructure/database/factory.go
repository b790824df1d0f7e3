package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and parameterizes the SQL backend.
type Config struct {
	// Driver forces a backend. Empty or "auto" detects it from URL.
	Driver Driver

	// URL is the Postgres connection string.
	URL string

	// SQLitePath is the database file used with DriverSQLite.
	// Defaults to ~/.taskbrief/data.db.
	SQLitePath string

	// MaxConns caps the Postgres pool size. Zero keeps the pgx default.
	MaxConns int
}

// Opener creates a Connection for one backend.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register installs the opener for a driver. Backend packages call it from init.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// NewConnection opens the SQL backend described by cfg.
// The backend package must be linked in with a blank import.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if !driver.IsSQL() {
		return nil, fmt.Errorf("driver %q cannot host the relational store", driver)
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %q is not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns ~/.taskbrief/data.db, or ./.taskbrief/data.db
// when the home directory cannot be resolved.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".taskbrief", "data.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
