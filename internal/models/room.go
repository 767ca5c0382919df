package models

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

// A room only leaves Available through a booking and only becomes Occupied
// through a confirmed payment.
const (
	RoomStatusAvailable RoomStatus = "Available"
	RoomStatusPending   RoomStatus = "Pending"
	RoomStatusOccupied  RoomStatus = "Occupied"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusPending, RoomStatusOccupied:
		return true
	}
	return false
}

type Room struct {
	Versioned
	ID         uuid.UUID  `json:"id"`
	RoomNumber int        `json:"room_number"`
	RoomType   string     `json:"room_type"`
	BedCount   int        `json:"bed_count"`
	Price      int64      `json:"price"` // minor currency units
	Status     RoomStatus `json:"status"`
	PhotoURL   *string    `json:"photo_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
