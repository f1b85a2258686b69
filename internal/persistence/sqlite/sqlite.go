// Package sqlite stores reservation slots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Storage implements persistence.SlotStore on SQLite. Each slot is one row
// holding the encoded collection.
type Storage struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	logger *slog.Logger
	now    func() time.Time
}

var _ persistence.SlotStore = (*Storage)(nil)

// Open connects to the database described by cfg. Call Migrate before use.
func Open(ctx context.Context, cfg migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{
		pool:   pool,
		retry:  NewRetryHelper(DefaultRetryConfig()),
		logger: logger.With("component", "sqlite"),
		now:    time.Now,
	}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return s.migrationManager().RunMigrations(ctx)
}

// MigrationStatus reports applied and pending schema migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (*migration.Status, error) {
	return s.migrationManager().Status(ctx)
}

func (s *Storage) migrationManager() *migration.Manager {
	return migration.NewManager(
		migration.NewFileScanner(migrationsFS, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
}

// Load implements persistence.SlotStore.
func (s *Storage) Load(ctx context.Context, slot string) ([]persistence.Reservation, error) {
	var payload string
	err := s.pool.DB().QueryRowContext(ctx, `SELECT payload FROM slots WHERE name = ?`, slot).Scan(&payload)
	if err != nil {
		return nil, MapError(err)
	}
	return persistence.DecodeSlot([]byte(payload))
}

// Save implements persistence.SlotStore. Busy databases are retried.
func (s *Storage) Save(ctx context.Context, slot string, records []persistence.Reservation) error {
	payload, err := persistence.EncodeSlot(records)
	if err != nil {
		return err
	}

	const upsertSQL = `
		INSERT INTO slots (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, upsertSQL, slot, string(payload), s.now().UTC().Format(time.RFC3339Nano))
			return err
		})
	})
}

// LoadVersion implements persistence.SlotStore.
func (s *Storage) LoadVersion(ctx context.Context, slot string) ([]persistence.Reservation, persistence.Version, error) {
	var payload string
	err := s.pool.DB().QueryRowContext(ctx, `SELECT payload FROM slots WHERE name = ?`, slot).Scan(&payload)
	if err != nil {
		return nil, "", MapError(err)
	}
	records, err := persistence.DecodeSlot([]byte(payload))
	if err != nil {
		return nil, "", err
	}
	return records, persistence.VersionOf([]byte(payload)), nil
}

// SaveIf implements persistence.SlotStore. The check and the write share one
// transaction and the UPDATE is conditional on the payload that was checked.
func (s *Storage) SaveIf(ctx context.Context, slot string, records []persistence.Reservation, expected persistence.Version) error {
	payload, err := persistence.EncodeSlot(records)
	if err != nil {
		return err
	}

	const (
		insertSQL = `INSERT INTO slots (name, payload, updated_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`
		updateSQL = `UPDATE slots SET payload = ?, updated_at = ? WHERE name = ? AND payload = ?`
	)

	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			updatedAt := s.now().UTC().Format(time.RFC3339Nano)

			var current string
			err := tx.QueryRowContext(ctx, `SELECT payload FROM slots WHERE name = ?`, slot).Scan(&current)
			var res sql.Result
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if expected != "" {
					return persistence.ErrConflict
				}
				res, err = tx.ExecContext(ctx, insertSQL, slot, string(payload), updatedAt)
			case err != nil:
				return err
			case persistence.VersionOf([]byte(current)) != expected:
				return persistence.ErrConflict
			default:
				res, err = tx.ExecContext(ctx, updateSQL, string(payload), updatedAt, slot, current)
			}
			if err != nil {
				return err
			}

			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return persistence.ErrConflict
			}
			return nil
		})
	})
}

// Clear implements persistence.SlotStore.
func (s *Storage) Clear(ctx context.Context, slot string) error {
	return s.retry.WithRetry(ctx, func() error {
		return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, slot)
			return err
		})
	})
}
