// Package catalog holds the building's static reference data: bookable rooms
// and the sectors users belong to.
package catalog

import "slices"

// Room is a bookable meeting room. Rooms are reference data; the engine never
// creates or removes them.
type Room struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Capacity    int      `json:"capacity"`
	Floor       int      `json:"floor"`
	Features    []string `json:"features"`
	IsAvailable bool     `json:"is_available"`
}

// Catalog answers room lookups.
type Catalog interface {
	Rooms() []Room
	RoomByID(id string) (Room, bool)
}

// Static is an immutable, in-memory Catalog.
type Static struct {
	rooms []Room
}

// NewStatic builds a catalog over rooms. The slice is copied.
func NewStatic(rooms []Room) *Static {
	copied := make([]Room, len(rooms))
	for i, r := range rooms {
		r.Features = slices.Clone(r.Features)
		copied[i] = r
	}
	return &Static{rooms: copied}
}

// Default returns the catalog of the building's five rooms.
func Default() *Static {
	return NewStatic(defaultRooms)
}

// Rooms returns every room in catalog order.
func (s *Static) Rooms() []Room {
	if s == nil {
		return nil
	}
	out := make([]Room, len(s.rooms))
	for i, r := range s.rooms {
		r.Features = slices.Clone(r.Features)
		out[i] = r
	}
	return out
}

// RoomByID looks a room up by its identifier.
func (s *Static) RoomByID(id string) (Room, bool) {
	if s == nil {
		return Room{}, false
	}
	for _, r := range s.rooms {
		if r.ID == id {
			r.Features = slices.Clone(r.Features)
			return r, true
		}
	}
	return Room{}, false
}

var defaultRooms = []Room{
	{
		ID:          "1",
		Name:        "Sala de Reunião 1",
		Capacity:    8,
		Floor:       1,
		Features:    []string{"TV", "Quadro Branco", "Ar Condicionado"},
		IsAvailable: true,
	},
	{
		ID:          "2",
		Name:        "Sala de Reunião 2",
		Capacity:    12,
		Floor:       1,
		Features:    []string{"TV", "Quadro Branco", "Ar Condicionado", "Projetor"},
		IsAvailable: true,
	},
	{
		ID:          "3",
		Name:        "Sala de Reunião 3",
		Capacity:    6,
		Floor:       2,
		Features:    []string{"TV", "Quadro Branco"},
		IsAvailable: true,
	},
	{
		ID:          "4",
		Name:        "Sala de Treinamento",
		Capacity:    20,
		Floor:       2,
		Features:    []string{"TV", "Quadro Branco", "Ar Condicionado", "Projetor", "Som"},
		IsAvailable: true,
	},
	{
		ID:          "5",
		Name:        "Sala Executiva",
		Capacity:    4,
		Floor:       3,
		Features:    []string{"TV", "Mesa de Conferência", "Ar Condicionado"},
		IsAvailable: true,
	},
}

// Sectors lists the organisational units a reservation can be filed under.
var Sectors = []string{
	"Administração",
	"RH",
	"TI",
	"Financeiro",
	"Comercial",
	"Operações",
	"Marketing",
	"Jurídico",
}

// IsSector reports whether name is a known sector.
func IsSector(name string) bool {
	return slices.Contains(Sectors, name)
}
