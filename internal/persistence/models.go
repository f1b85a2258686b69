package persistence

import "time"

// Reservation is the stored shape of a reservation. Field names follow the
// payload format already written by earlier clients of the slot.
type Reservation struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	RoomName    string    `json:"roomName"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Sector      string    `json:"sector"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
