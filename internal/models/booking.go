package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingPaymentStatus string

const (
	BookingUnpaid BookingPaymentStatus = "Unpaid"
	BookingPaid   BookingPaymentStatus = "Paid"
)

type Booking struct {
	ID            uuid.UUID            `json:"id"`
	TenantID      uuid.UUID            `json:"tenant_id"`
	RoomID        uuid.UUID            `json:"room_id"`
	RoomNumber    int                  `json:"room_number"`
	CheckIn       time.Time            `json:"check_in"`
	CheckOut      time.Time            `json:"check_out"`
	PaymentStatus BookingPaymentStatus `json:"payment_status"`
	ReleasedAt    *time.Time           `json:"released_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
