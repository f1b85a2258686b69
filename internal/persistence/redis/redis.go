// Package redis stores reservation slots as Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/room-reservations/internal/persistence"
)

// DefaultKeyPrefix namespaces slot keys.
const DefaultKeyPrefix = "reservations:slot:"

// Store implements persistence.SlotStore on a Redis server.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ persistence.SlotStore = (*Store)(nil)

// Dial parses url, connects and pings the server.
func Dial(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %v", persistence.ErrUnavailable, err)
	}
	return New(rdb, DefaultKeyPrefix), nil
}

// New wraps an existing client.
func New(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(slot string) string {
	return s.prefix + slot
}

// Load implements persistence.SlotStore.
func (s *Store) Load(ctx context.Context, slot string) ([]persistence.Reservation, error) {
	payload, err := s.rdb.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return persistence.DecodeSlot(payload)
}

// Save implements persistence.SlotStore. Slots never expire.
func (s *Store) Save(ctx context.Context, slot string, records []persistence.Reservation) error {
	payload, err := persistence.EncodeSlot(records)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(slot), payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

// LoadVersion implements persistence.SlotStore.
func (s *Store) LoadVersion(ctx context.Context, slot string) ([]persistence.Reservation, persistence.Version, error) {
	payload, err := s.rdb.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, "", persistence.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	records, err := persistence.DecodeSlot(payload)
	if err != nil {
		return nil, "", err
	}
	return records, persistence.VersionOf(payload), nil
}

// SaveIf implements persistence.SlotStore. The key is watched while its
// current content is compared, so a write from another client between the
// check and the MULTI/EXEC aborts the transaction.
func (s *Store) SaveIf(ctx context.Context, slot string, records []persistence.Reservation, expected persistence.Version) error {
	payload, err := persistence.EncodeSlot(records)
	if err != nil {
		return err
	}
	key := s.key(slot)

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if expected != "" {
				return persistence.ErrConflict
			}
		case err != nil:
			return err
		case persistence.VersionOf(current) != expected:
			return persistence.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrConflict), errors.Is(err, redis.TxFailedErr):
		return persistence.ErrConflict
	default:
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
}

// Clear implements persistence.SlotStore.
func (s *Store) Clear(ctx context.Context, slot string) error {
	if err := s.rdb.Del(ctx, s.key(slot)).Err(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
