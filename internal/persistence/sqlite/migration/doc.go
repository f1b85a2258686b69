// Package migration applies versioned SQL migrations to the reservation
// database.
//
// Migration files are read from an fs.FS, usually an embedded directory, and
// must be named {version}_{description}.sql (for example
// "001_create_slots.sql"). Applied versions and their checksums are recorded
// in a schema_migrations table so each file runs exactly once. Each file runs
// inside its own transaction.
//
// Example usage:
//
//	manager := NewManager(NewFileScanner(migrationsFS, "migrations"), NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
