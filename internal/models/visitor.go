package models

import (
	"time"

	"github.com/google/uuid"
)

type Visitor struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	Name             string     `json:"name"`
	PhoneNumber      string     `json:"phone_number"`
	RoomNumber       int        `json:"room_number"`
	IsActive         bool       `json:"is_active"`
	EntryTime        time.Time  `json:"entry_time"`
	PlannedExitTime  time.Time  `json:"planned_exit_time"`
	ActualExitTime   *time.Time `json:"actual_exit_time,omitempty"`
	OverstayNotified bool       `json:"overstay_notified"`
	CreatedAt        time.Time  `json:"created_at"`
}
