package application

import (
	"fmt"

	"github.com/example/room-reservations/internal/calendar"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

func toRecord(r scheduler.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:          r.ID,
		RoomID:      r.RoomID,
		RoomName:    r.RoomName,
		Date:        r.Date.String(),
		StartTime:   r.Start.String(),
		EndTime:     r.End.String(),
		UserID:      r.UserID,
		UserName:    r.UserName,
		Sector:      r.Sector,
		Title:       r.Title,
		Description: r.Description,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toRecords(list []scheduler.Reservation) []persistence.Reservation {
	records := make([]persistence.Reservation, len(list))
	for i, r := range list {
		records[i] = toRecord(r)
	}
	return records
}

func fromRecord(rec persistence.Reservation) (scheduler.Reservation, error) {
	date, err := calendar.ParseDate(rec.Date)
	if err != nil {
		return scheduler.Reservation{}, fmt.Errorf("%w: reservation %s date: %v", persistence.ErrCorrupt, rec.ID, err)
	}
	start, err := calendar.ParseTime(rec.StartTime)
	if err != nil {
		return scheduler.Reservation{}, fmt.Errorf("%w: reservation %s start: %v", persistence.ErrCorrupt, rec.ID, err)
	}
	end, err := calendar.ParseTime(rec.EndTime)
	if err != nil {
		return scheduler.Reservation{}, fmt.Errorf("%w: reservation %s end: %v", persistence.ErrCorrupt, rec.ID, err)
	}
	status := scheduler.Status(rec.Status)
	if !status.Valid() {
		return scheduler.Reservation{}, fmt.Errorf("%w: reservation %s status %q", persistence.ErrCorrupt, rec.ID, rec.Status)
	}

	return scheduler.Reservation{
		ID:          rec.ID,
		RoomID:      rec.RoomID,
		RoomName:    rec.RoomName,
		Date:        date,
		Start:       start,
		End:         end,
		UserID:      rec.UserID,
		UserName:    rec.UserName,
		Sector:      rec.Sector,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      status,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

func fromRecords(records []persistence.Reservation) ([]scheduler.Reservation, error) {
	list := make([]scheduler.Reservation, 0, len(records))
	for _, rec := range records {
		r, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, nil
}
