package dtos

import "github.com/google/uuid"

// SendNotificationRequest targets one tenant, or everyone when TenantID is omitted.
type SendNotificationRequest struct {
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
	Message  string     `json:"message" validate:"required,min=1,max=1000"`
}
