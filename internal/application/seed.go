package application

import (
	"time"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/scheduler"
)

// SeedReservations returns the demo reservations relative to now. Their
// statuses are derived from now.
func SeedReservations(now time.Time) []scheduler.Reservation {
	today := calendar.DateOf(now)
	seeds := []scheduler.Reservation{
		{
			ID:          "1",
			RoomID:      "1",
			RoomName:    "Sala de Reunião 1",
			Date:        today,
			Start:       calendar.NewTime(14, 0),
			End:         calendar.NewTime(15, 0),
			UserID:      "2",
			UserName:    "João Silva",
			Sector:      "RH",
			Title:       "Reunião de Integração",
			Description: "Integração de novos colaboradores",
		},
		{
			ID:          "2",
			RoomID:      "2",
			RoomName:    "Sala de Reunião 2",
			Date:        calendar.AddDays(today, 1),
			Start:       calendar.NewTime(9, 0),
			End:         calendar.NewTime(10, 30),
			UserID:      "1",
			UserName:    "Admin Antonelly",
			Sector:      "Administração",
			Title:       "Reunião de Planejamento",
			Description: "Planejamento estratégico do trimestre",
		},
		{
			ID:          "3",
			RoomID:      "4",
			RoomName:    "Sala de Treinamento",
			Date:        calendar.AddDays(today, 7),
			Start:       calendar.NewTime(13, 0),
			End:         calendar.NewTime(17, 0),
			UserID:      "2",
			UserName:    "João Silva",
			Sector:      "RH",
			Title:       "Treinamento de Segurança",
			Description: "Treinamento anual de segurança do trabalho",
		},
	}
	for i := range seeds {
		seeds[i].Status = scheduler.StatusScheduled
		seeds[i].Status = scheduler.DeriveStatus(seeds[i], now)
		seeds[i].CreatedAt = now
		seeds[i].UpdatedAt = now
	}
	return seeds
}
