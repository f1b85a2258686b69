package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// MaxUpdateAttempts bounds how often Update re-reads a slot that keeps
// changing underneath it.
const MaxUpdateAttempts = 8

// Mutation receives the stored records, with exists false when the slot is
// empty, and returns the records to write. It may run several times.
type Mutation func(records []Reservation, exists bool) ([]Reservation, error)

// VersionOf derives the version of an encoded payload.
func VersionOf(payload []byte) Version {
	sum := sha256.Sum256(payload)
	return Version(hex.EncodeToString(sum[:]))
}

// Update runs a read, mutate, compare-and-swap cycle against slot and starts
// over when another writer got there first. Errors returned by fn are passed
// through unchanged, except ErrSkipWrite which ends the cycle without writing.
func Update(ctx context.Context, store SlotStore, slot string, fn Mutation) error {
	var lastErr error
	for attempt := 0; attempt < MaxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		records, version, err := store.LoadVersion(ctx, slot)
		exists := true
		if errors.Is(err, ErrNotFound) {
			records, version, exists, err = nil, "", false, nil
		}
		if err != nil {
			return err
		}

		next, err := fn(records, exists)
		if errors.Is(err, ErrSkipWrite) {
			return nil
		}
		if err != nil {
			return err
		}

		lastErr = store.SaveIf(ctx, slot, next, version)
		if !errors.Is(lastErr, ErrConflict) {
			return lastErr
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", MaxUpdateAttempts, lastErr)
}
