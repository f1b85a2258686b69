package persistence

import "context"

// DefaultSlot is the name under which the reservation collection is stored.
const DefaultSlot = "@salafacil:reservations"

// Version identifies the stored content of a slot. The zero value means the
// slot is absent.
type Version string

// SlotStore persists a whole reservation collection under a named slot.
// Implementations must return records in the order they were saved.
type SlotStore interface {
	// Load returns ErrNotFound when nothing has been saved under slot.
	Load(ctx context.Context, slot string) ([]Reservation, error)
	Save(ctx context.Context, slot string, records []Reservation) error
	Clear(ctx context.Context, slot string) error

	// LoadVersion is Load plus the version of what was read.
	LoadVersion(ctx context.Context, slot string) ([]Reservation, Version, error)
	// SaveIf writes records only while the slot still holds expected and
	// returns ErrConflict otherwise.
	SaveIf(ctx context.Context, slot string, records []Reservation, expected Version) error
}
