package models

import (
	"time"

	"github.com/google/uuid"
)

type EmailVerificationCode struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	Email            string     `json:"email"`
	VerificationCode string     `json:"-"`
	ExpiresAt        time.Time  `json:"expires_at"`
	Attempts         int        `json:"attempts"`
	Verified         bool       `json:"verified"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type AccountType string

const (
	AccountTenant AccountType = "tenant"
	AccountAdmin  AccountType = "admin"
)

type PasswordResetCode struct {
	ID          uuid.UUID   `json:"id"`
	AccountType AccountType `json:"account_type"`
	AccountID   uuid.UUID   `json:"account_id"`
	Email       string      `json:"email"`
	CodeHash    string      `json:"-"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Attempts    int         `json:"attempts"`
	Used        bool        `json:"used"`
	CreatedAt   time.Time   `json:"created_at"`
}
