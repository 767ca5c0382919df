package dtos

import (
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
)

type TenantSignupRequest struct {
	FirstName   string `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string `json:"last_name" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required,hostelpassword"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminSignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=200"`
	Password string `json:"password" validate:"required,hostelpassword"`
}

type TenantAuthResponse struct {
	Tenant *models.Tenant `json:"tenant"`
}

type AdminAuthResponse struct {
	Admin *models.Admin `json:"admin"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type PasswordResetRequest struct {
	Email       string             `json:"email" validate:"required,email"`
	AccountType models.AccountType `json:"account_type" validate:"required,oneof=tenant admin"`
}

type PasswordResetVerifyRequest struct {
	Email       string             `json:"email" validate:"required,email"`
	AccountType models.AccountType `json:"account_type" validate:"required,oneof=tenant admin"`
	Code        string             `json:"code" validate:"required,len=6,numeric"`
}

type PasswordResetConfirmRequest struct {
	Email       string             `json:"email" validate:"required,email"`
	AccountType models.AccountType `json:"account_type" validate:"required,oneof=tenant admin"`
	Code        string             `json:"code" validate:"required,len=6,numeric"`
	NewPassword string             `json:"new_password" validate:"required,hostelpassword"`
}

type CodeValidityResponse struct {
	Valid bool `json:"valid"`
}
