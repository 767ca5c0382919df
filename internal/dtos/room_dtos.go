package dtos

import "github.com/google/uuid"

type CreateRoomRequest struct {
	RoomNumber int    `json:"room_number" validate:"required,gt=0"`
	RoomType   string `json:"room_type" validate:"required,min=1,max=50"`
	BedCount   int    `json:"bed_count" validate:"required,gt=0"`
	Price      int64  `json:"price" validate:"gte=0"`
}

// UpdateRoomRequest never carries status; that only moves through bookings and payments.
type UpdateRoomRequest struct {
	RoomType *string `json:"room_type,omitempty" validate:"omitempty,min=1,max=50"`
	BedCount *int    `json:"bed_count,omitempty" validate:"omitempty,gt=0"`
	Price    *int64  `json:"price,omitempty" validate:"omitempty,gte=0"`
}

type CreateBookingRequest struct {
	RoomNumber int    `json:"room_number" validate:"required,gt=0"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type CheckoutRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
}

type CheckoutResponse struct {
	PaymentID uuid.UUID `json:"payment_id"`
	SessionID string    `json:"session_id"`
	URL       string    `json:"url"`
}
