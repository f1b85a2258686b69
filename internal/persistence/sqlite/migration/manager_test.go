package migration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), InMemoryTestSQLiteConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"migrations/001_create_slots.sql": {Data: []byte(`-- Description: create slots
CREATE TABLE slots (name TEXT PRIMARY KEY, payload TEXT NOT NULL);`)},
		"migrations/002_add_updated_at.sql": {Data: []byte(`ALTER TABLE slots ADD COLUMN updated_at TEXT;
CREATE INDEX idx_slots_updated_at ON slots(updated_at);`)},
		"migrations/README.md": {Data: []byte("ignored")},
	}
}

func TestManagerRunMigrationsAppliesInOrderOnce(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	manager := NewManager(NewFileScanner(testMigrations(), "migrations"), NewSQLiteExecutor(db), discardLogger())

	require.NoError(t, manager.RunMigrations(ctx))

	status, err := manager.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "002", status.CurrentVersion)
	assert.Zero(t, status.PendingCount)
	require.Len(t, status.AppliedMigrations, 2)
	assert.Equal(t, "001", status.AppliedMigrations[0].Version)

	_, err = db.ExecContext(ctx, `INSERT INTO slots (name, payload, updated_at) VALUES ('a', '[]', 'now')`)
	require.NoError(t, err)

	// A second run is a no-op.
	require.NoError(t, manager.RunMigrations(ctx))
}

func TestManagerPendingAfterNewFile(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := testMigrations()
	delete(files, "migrations/002_add_updated_at.sql")

	require.NoError(t, NewManager(NewFileScanner(files, "migrations"), NewSQLiteExecutor(db), discardLogger()).RunMigrations(ctx))

	manager := NewManager(NewFileScanner(testMigrations(), "migrations"), NewSQLiteExecutor(db), discardLogger())
	pending, err := manager.PendingMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "002", pending[0].Version)
	assert.Equal(t, "add updated at", pending[0].Description)
}

func TestManagerRejectsEditedMigration(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, NewManager(NewFileScanner(testMigrations(), "migrations"), NewSQLiteExecutor(db), discardLogger()).RunMigrations(ctx))

	edited := testMigrations()
	edited["migrations/001_create_slots.sql"] = &fstest.MapFile{Data: []byte(`CREATE TABLE slots (name TEXT);`)}

	err := NewManager(NewFileScanner(edited, "migrations"), NewSQLiteExecutor(db), discardLogger()).RunMigrations(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
}

func TestManagerRejectsGap(t *testing.T) {
	files := fstest.MapFS{
		"m/001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"m/003_c.sql": {Data: []byte("CREATE TABLE c (id INTEGER);")},
	}
	manager := NewManager(NewFileScanner(files, "m"), NewSQLiteExecutor(openTestDB(t)), discardLogger())

	err := manager.RunMigrations(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestManagerFailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := fstest.MapFS{
		"m/001_broken.sql": {Data: []byte("CREATE TABLE ok_table (id INTEGER);\nCREATE TABLE broken (;")},
	}
	manager := NewManager(NewFileScanner(files, "m"), NewSQLiteExecutor(db), discardLogger())

	err := manager.RunMigrations(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationFailed)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'ok_table'`).Scan(&count))
	assert.Zero(t, count)

	applied, err := NewSQLiteExecutor(db).GetAppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestFileScannerValidation(t *testing.T) {
	scanner := NewFileScanner(fstest.MapFS{}, ".")

	assert.NoError(t, scanner.ValidateFileName("001_create_slots.sql"))
	assert.ErrorIs(t, scanner.ValidateFileName("create_slots.sql"), ErrInvalidMigrationFile)
	assert.ErrorIs(t, scanner.ValidateFileName("001 create.sql"), ErrInvalidMigrationFile)

	_, err := NewFileScanner(fstest.MapFS{
		"001_a.sql":  {Data: []byte("SELECT 1;")},
		"0001_b.sql": {Data: []byte("SELECT 1;")},
	}, ".").ScanMigrations()
	assert.ErrorIs(t, err, ErrDuplicateVersion)

	_, err = NewFileScanner(fstest.MapFS{
		"001_a.sql": {Data: []byte("-- only a comment\n")},
	}, ".").ScanMigrations()
	assert.ErrorIs(t, err, ErrInvalidMigrationFile)
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- header\nCREATE TABLE a (id INTEGER);\n\n-- note\nCREATE INDEX i ON a(id);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX i ON a(id)"}, got)
}

func TestSQLiteConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultSQLiteConfig("data/x.db").Validate())

	cfg := DefaultSQLiteConfig("")
	cfg.JournalMode = "FAST"
	cfg.BusyTimeout = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN cannot be empty")
	assert.Contains(t, err.Error(), "invalid journal mode: FAST")
	assert.Contains(t, err.Error(), "BusyTimeout cannot be negative")
}
