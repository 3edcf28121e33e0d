// Package touchstore is the SQLite-backed persistence layer: background
// model snapshots (so a sensor need not relearn its reference distances on
// every restart) and a rolling history of emitted TouchEvents for offline
// analysis. Grounded on the teacher corpus's internal/db package, trimmed
// to the two record kinds this pipeline actually needs.
package touchstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a *sql.DB opened against the pure-Go modernc.org/sqlite driver,
// matching the teacher corpus's driver choice.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the SQLite database at path, applies
// the WAL/busy-timeout PRAGMAs the teacher corpus uses, and runs every
// pending migration.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("touchstore: open %s: %w", path, err)
	}

	if err := applyPragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("touchstore: apply pragmas: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return nil
}

func (db *DB) migrateUp() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("touchstore: migrations source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("touchstore: migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("touchstore: migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("touchstore: migrate up: %w", err)
	}
	return nil
}

// MigrationsFS exposes the embedded migration filesystem for tooling (e.g.
// an offline `touchcored migrate status` command).
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}
