package dtos

import (
	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

type CreateIssueRequest struct {
	RoomNumber  *int                 `json:"room_number,omitempty" validate:"omitempty,gt=0"`
	Category    models.IssueCategory `json:"category" validate:"required,oneof=Plumbing Electrical Carpentry Cleaning Internet Other"`
	Priority    models.IssuePriority `json:"priority" validate:"required,oneof=Low Medium High"`
	Description string               `json:"description" validate:"required,min=3,max=2000"`
}

type AssignIssueRequest struct {
	TechnicianID uuid.UUID `json:"technician_id" validate:"required"`
}

type CreateTechnicianRequest struct {
	Name        string               `json:"name" validate:"required,min=2,max=200"`
	Email       string               `json:"email" validate:"required,email"`
	PhoneNumber string               `json:"phone_number" validate:"required,e164"`
	Specialty   models.IssueCategory `json:"specialty" validate:"required,oneof=Plumbing Electrical Carpentry Cleaning Internet Other"`
}
