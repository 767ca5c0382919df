package models

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	AdPending  ApprovalStatus = "Pending"
	AdApproved ApprovalStatus = "Approved"
	AdRejected ApprovalStatus = "Rejected"
)

type Advertisement struct {
	ID             uuid.UUID      `json:"id"`
	TenantID       uuid.UUID      `json:"tenant_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Price          *int64         `json:"price,omitempty"`
	Contact        string         `json:"contact"`
	ImageURL       *string        `json:"image_url,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
