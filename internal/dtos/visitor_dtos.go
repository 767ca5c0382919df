package dtos

import "time"

type VisitorSignInRequest struct {
	Name            string    `json:"name" validate:"required,min=2,max=200"`
	PhoneNumber     string    `json:"phone_number" validate:"required,e164"`
	RoomNumber      int       `json:"room_number" validate:"required,gt=0"`
	EntryTime       time.Time `json:"entry_time" validate:"required"`
	PlannedExitTime time.Time `json:"planned_exit_time" validate:"required"`
}

type VisitorSignOutRequest struct {
	ActualExitTime time.Time `json:"actual_exit_time" validate:"required"`
}
