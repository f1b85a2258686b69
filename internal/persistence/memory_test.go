package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Reservation {
	created := time.Date(2025, time.January, 9, 10, 0, 0, 0, time.UTC)
	return []Reservation{
		{ID: "3", RoomID: "4", Date: "2025-01-17", StartTime: "13:00", EndTime: "17:00", Title: "Treinamento", Status: "Agendado", CreatedAt: created, UpdatedAt: created},
		{ID: "1", RoomID: "1", Date: "2025-01-10", StartTime: "14:00", EndTime: "15:00", Title: "Integração", Status: "Agendado", CreatedAt: created, UpdatedAt: created},
		{ID: "2", RoomID: "2", Date: "2025-01-11", StartTime: "09:00", EndTime: "10:30", Title: "Planejamento", Description: "Trimestre", Status: "Cancelado", CreatedAt: created, UpdatedAt: created},
	}
}

func TestMemoryStoreRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, DefaultSlot)
	require.ErrorIs(t, err, ErrNotFound)

	records := sampleRecords()
	require.NoError(t, store.Save(ctx, DefaultSlot, records))

	loaded, err := store.Load(ctx, DefaultSlot)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	loaded[0].Title = "mutated"
	again, err := store.Load(ctx, DefaultSlot)
	require.NoError(t, err)
	assert.Equal(t, "Treinamento", again[0].Title)
}

func TestMemoryStoreClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, DefaultSlot, sampleRecords()))
	require.NoError(t, store.Save(ctx, "other", nil))

	require.NoError(t, store.Clear(ctx, DefaultSlot))
	_, err := store.Load(ctx, DefaultSlot)
	assert.ErrorIs(t, err, ErrNotFound)

	empty, err := store.Load(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeSlotRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := DecodeSlot([]byte("{not json"))
	assert.ErrorIs(t, err, ErrCorrupt)
}
