package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager applies the embedded dataset schema to one SQLite file.
type MigrationManager struct {
	migrate *migrate.Migrate
}

// NewMigrationManager creates a migration manager for the database at dbPath.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsDir, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, sqliteURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &MigrationManager{migrate: m}, nil
}

// sqliteURL builds the migrate database URL. Windows paths get forward
// slashes and a leading slash.
func sqliteURL(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && p != "" && p[0] != '/' {
		p = "/" + p
	}
	return "sqlite://" + p
}

// Up applies all pending migrations and logs the schema change, if any.
func (mm *MigrationManager) Up() error {
	return mm.apply("apply", mm.migrate.Up)
}

// Down rolls back all migrations.
func (mm *MigrationManager) Down() error {
	return mm.apply("roll back", mm.migrate.Down)
}

// MigrateTo moves the schema up or down to version.
func (mm *MigrationManager) MigrateTo(version uint) error {
	return mm.apply(fmt.Sprintf("migrate to version %d", version), func() error {
		return mm.migrate.Migrate(version)
	})
}

func (mm *MigrationManager) apply(action string, step func() error) error {
	before, _, err := mm.Version()
	if err != nil {
		return err
	}

	if err := step(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to %s migrations: %w", action, err)
	}

	after, _, err := mm.Version()
	if err != nil {
		return err
	}
	log.Printf("[Storage] Schema version %d -> %d", before, after)
	return nil
}

// Version returns the current migration version and dirty state. A database
// without a schema reports version 0.
func (mm *MigrationManager) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mm.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Close closes the migration manager and releases resources.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.migrate.Close()
	return errors.Join(srcErr, dbErr)
}
