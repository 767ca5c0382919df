package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

type AuditTargetType string

const (
	TargetRoom          AuditTargetType = "ROOM"
	TargetTenant        AuditTargetType = "TENANT"
	TargetIssue         AuditTargetType = "ISSUE"
	TargetTechnician    AuditTargetType = "TECHNICIAN"
	TargetAdvertisement AuditTargetType = "ADVERTISEMENT"
	TargetAdmin         AuditTargetType = "ADMIN"
)

type AdminAuditLog struct {
	ID         uuid.UUID        `json:"id"`
	AdminID    uuid.UUID        `json:"admin_id"`
	Action     AuditAction      `json:"action"`
	TargetID   uuid.UUID        `json:"target_id"`
	TargetType AuditTargetType  `json:"target_type"`
	Details    *json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
