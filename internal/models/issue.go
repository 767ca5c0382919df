package models

import (
	"time"

	"github.com/google/uuid"
)

type IssueStatus string

const (
	IssueOpen     IssueStatus = "OPEN"
	IssueAssigned IssueStatus = "ASSIGNED"
	IssueResolved IssueStatus = "RESOLVED"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueAssigned, IssueResolved:
		return true
	}
	return false
}

// IssueCategory doubles as a technician specialty.
type IssueCategory string

const (
	CategoryPlumbing   IssueCategory = "Plumbing"
	CategoryElectrical IssueCategory = "Electrical"
	CategoryCarpentry  IssueCategory = "Carpentry"
	CategoryCleaning   IssueCategory = "Cleaning"
	CategoryInternet   IssueCategory = "Internet"
	CategoryOther      IssueCategory = "Other"
)

type IssuePriority string

const (
	PriorityLow    IssuePriority = "Low"
	PriorityMedium IssuePriority = "Medium"
	PriorityHigh   IssuePriority = "High"
)

type Issue struct {
	ID           uuid.UUID     `json:"id"`
	TenantID     uuid.UUID     `json:"tenant_id"`
	RoomNumber   *int          `json:"room_number,omitempty"`
	Category     IssueCategory `json:"category"`
	Priority     IssuePriority `json:"priority"`
	Description  string        `json:"description"`
	Status       IssueStatus   `json:"status"`
	TechnicianID *uuid.UUID    `json:"technician_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	ResolvedAt   *time.Time    `json:"resolved_at,omitempty"`
}
