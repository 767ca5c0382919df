package models

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	TechnicianAssigned   AssignmentStatus = "Assigned"
	TechnicianUnassigned AssignmentStatus = "Unassigned"
)

type Technician struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	PhoneNumber      string           `json:"phone_number"`
	Specialty        IssueCategory    `json:"specialty"`
	AssignmentStatus AssignmentStatus `json:"assignment_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
