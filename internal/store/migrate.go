package store

import (
	"context"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func (s *Store) migrationDir() string {
	return "migrations/" + s.dialect
}

func (s *Store) setupGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Migrate runs all pending migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := s.setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, s.migrationDir()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version.
func (s *Store) MigrationVersion(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := s.setupGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, s.db)
}
