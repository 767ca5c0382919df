package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type Payment struct {
	ID                uuid.UUID     `json:"id"`
	TenantID          uuid.UUID     `json:"tenant_id"`
	BookingID         uuid.UUID     `json:"booking_id"`
	RoomNumber        int           `json:"room_number"`
	Amount            int64         `json:"amount"`
	Currency          string        `json:"currency"`
	Method            string        `json:"method"`
	Status            PaymentStatus `json:"payment_status"`
	CheckoutSessionID *string       `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// PaymentEvent is a processor callback reduced to what reconciliation needs.
type PaymentEvent struct {
	EventID    string
	EventType  string
	PaymentID  uuid.UUID
	TenantID   uuid.UUID
	BookingID  *uuid.UUID
	RoomNumber int
}
