package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	twilio "github.com/twilio/twilio-go"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/config"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/dtos"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// SessionTokens is what a successful sign-in or refresh hands to the controller
// for the cookie pair.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

func errInvalidCredentials() *utils.AppError {
	return &utils.AppError{
		StatusCode: http.StatusUnauthorized,
		Code:       utils.ErrCodeInvalidCredentials,
		Message:    "Invalid email or password",
	}
}

func errLocked(until time.Time) *utils.AppError {
	return &utils.AppError{
		StatusCode: http.StatusLocked,
		Code:       utils.ErrCodeLockedAccount,
		Message:    fmt.Sprintf("Account locked until %s", until.UTC().Format(time.RFC3339)),
	}
}

func errRefresh(err error) *utils.AppError {
	if errors.Is(err, ErrRefreshTokenExpired) {
		return &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeTokenExpired, Message: "Refresh token expired", Err: err}
	}
	if errors.Is(err, ErrInvalidRefreshToken) {
		return &utils.AppError{StatusCode: http.StatusUnauthorized, Code: utils.ErrCodeUnauthorized, Message: "Invalid refresh token", Err: err}
	}
	return errInternal("Failed to refresh session", err)
}

// credentialGate runs the shared lockout bookkeeping around a password check.
type credentialGate struct {
	cfg      *config.Config
	attempts repositories.LoginAttemptsRepository
}

func (g credentialGate) check(ctx context.Context, accountID uuid.UUID, passwordHash, password string) error {
	if _, err := g.attempts.GetOrCreate(ctx, accountID); err != nil {
		return errInternal("Failed to load login attempts", err)
	}

	locked, lockedUntil, err := g.attempts.IsLocked(ctx, accountID)
	if err != nil {
		return errInternal("Failed to check account lock", err)
	}
	if locked {
		return errLocked(lockedUntil)
	}

	if !utils.CheckPasswordHash(password, passwordHash) {
		if incErr := g.attempts.Increment(ctx, accountID, g.cfg.LockDuration, g.cfg.AttemptWindow, g.cfg.MaxLoginAttempts); incErr != nil {
			utils.Logger.WithError(incErr).Error("Failed to increment login attempts")
		}
		return errInvalidCredentials()
	}

	if err := g.attempts.Reset(ctx, accountID); err != nil {
		utils.Logger.WithError(err).Warn("Failed to reset login attempts")
	}
	return nil
}

func issueSession(ctx context.Context, cfg *config.Config, jwtSvc JWTService, tokens repositories.TokenRepository, subjectID uuid.UUID, ip string) (*SessionTokens, error) {
	if err := tokens.RemoveAllRefreshTokensByUserID(ctx, subjectID); err != nil {
		utils.Logger.WithError(err).Error("Failed to remove old refresh tokens on sign-in")
	}

	access, err := jwtSvc.GenerateAccessToken(subjectID, cfg.AccessTokenTTL)
	if err != nil {
		return nil, errInternal("Token generation failed", err)
	}
	refresh, err := jwtSvc.GenerateRefreshToken(ctx, subjectID, ip, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, errInternal("Token generation failed", err)
	}
	return &SessionTokens{AccessToken: access, RefreshToken: refresh.Token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ----------------------------------------------------------------------
// Tenants
// ----------------------------------------------------------------------

type TenantAuthService struct {
	cfg          *config.Config
	tenants      repositories.TenantRepository
	tokens       repositories.TokenRepository
	jwt          JWTService
	gate         credentialGate
	verification *EmailVerificationService
	twilio       *twilio.RestClient
}

func NewTenantAuthService(
	cfg *config.Config,
	tenants repositories.TenantRepository,
	attempts repositories.LoginAttemptsRepository,
	tokens repositories.TokenRepository,
	jwtSvc JWTService,
	verification *EmailVerificationService,
	twilioClient *twilio.RestClient,
) *TenantAuthService {
	return &TenantAuthService{
		cfg:          cfg,
		tenants:      tenants,
		tokens:       tokens,
		jwt:          jwtSvc,
		gate:         credentialGate{cfg: cfg, attempts: attempts},
		verification: verification,
		twilio:       twilioClient,
	}
}

func (s *TenantAuthService) Signup(ctx context.Context, req dtos.TenantSignupRequest) (*models.Tenant, error) {
	logger := utils.Logger.WithField("operation", "tenant_signup")
	email := normalizeEmail(req.Email)

	if !utils.IsStrongPassword(req.Password) {
		return nil, errValidation("Password must be at least 8 characters and include upper-case, lower-case, digit and symbol")
	}
	if !utils.ValidateEmail(ctx, email, false) {
		return nil, errValidation("Invalid email address")
	}
	if err := s.checkPhone(ctx, req.PhoneNumber); err != nil {
		return nil, err
	}

	if existing, err := s.tenants.GetByEmail(ctx, email); err != nil {
		return nil, errInternal("Failed to check email", err)
	} else if existing != nil {
		return nil, errConflict("Email already registered", utils.ErrEmailExists)
	}
	if existing, err := s.tenants.GetByPhoneNumber(ctx, req.PhoneNumber); err != nil {
		return nil, errInternal("Failed to check phone number", err)
	} else if existing != nil {
		return nil, errConflict("Phone number already registered", utils.ErrPhoneExists)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errInternal("Failed to hash password", err)
	}

	tenant := &models.Tenant{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		switch {
		case errors.Is(err, utils.ErrEmailExists):
			return nil, errConflict("Email already registered", err)
		case errors.Is(err, utils.ErrPhoneExists):
			return nil, errConflict("Phone number already registered", err)
		}
		return nil, errInternal("Failed to create tenant", err)
	}
	tenant.RowVersion = 1
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = tenant.CreatedAt

	// The account exists either way; a failed email only means the tenant
	// has to ask for a new code.
	if err := s.verification.SendCode(ctx, tenant); err != nil {
		logger.WithError(err).Warn("Verification email not sent")
	}

	logger.WithFields(logrus.Fields{"tenant_id": tenant.ID}).Info("Tenant registered")
	return tenant, nil
}

func (s *TenantAuthService) checkPhone(ctx context.Context, phone string) error {
	if !utils.IsE164(phone) {
		return errValidation("Phone number must be in E.164 format")
	}
	if !s.cfg.LDFlag_ValidatePhoneWithTwilio || s.twilio == nil {
		return nil
	}
	ok, err := utils.ValidatePhoneNumber(ctx, phone, s.twilio)
	if err != nil {
		return &utils.AppError{
			StatusCode: http.StatusBadGateway,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Phone validation is unavailable",
			Err:        err,
		}
	}
	if !ok {
		return errValidation("Phone number does not exist")
	}
	return nil
}

func (s *TenantAuthService) Signin(ctx context.Context, req dtos.SignInRequest, ip string) (*models.Tenant, *SessionTokens, error) {
	tenant, err := s.tenants.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, nil, errInternal("Failed to load tenant", err)
	}
	if tenant == nil {
		return nil, nil, errInvalidCredentials()
	}

	if err := s.gate.check(ctx, tenant.ID, tenant.PasswordHash, req.Password); err != nil {
		return nil, nil, err
	}

	session, err := issueSession(ctx, s.cfg, s.jwt, s.tokens, tenant.ID, ip)
	if err != nil {
		return nil, nil, err
	}
	return tenant, session, nil
}

func (s *TenantAuthService) Refresh(ctx context.Context, refreshToken, ip string) (*SessionTokens, error) {
	access, refresh, err := s.jwt.RefreshToken(ctx, refreshToken, ip, s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, errRefresh(err)
	}
	return &SessionTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TenantAuthService) Signout(ctx context.Context, refreshToken string) error {
	if err := s.jwt.Logout(ctx, refreshToken); err != nil {
		return errInternal("Failed to sign out", err)
	}
	return nil
}

// ----------------------------------------------------------------------
// Admins
// ----------------------------------------------------------------------

type AdminAuthService struct {
	cfg    *config.Config
	admins repositories.AdminRepository
	tokens repositories.TokenRepository
	jwt    JWTService
	gate   credentialGate
	audit  *AuditLogger
}

func NewAdminAuthService(
	cfg *config.Config,
	admins repositories.AdminRepository,
	attempts repositories.LoginAttemptsRepository,
	tokens repositories.TokenRepository,
	jwtSvc JWTService,
	audit *AuditLogger,
) *AdminAuthService {
	return &AdminAuthService{
		cfg:    cfg,
		admins: admins,
		tokens: tokens,
		jwt:    jwtSvc,
		gate:   credentialGate{cfg: cfg, attempts: attempts},
		audit:  audit,
	}
}

// Signup lets an existing admin create another one.
func (s *AdminAuthService) Signup(ctx context.Context, actingAdminID uuid.UUID, req dtos.AdminSignupRequest) (*models.Admin, error) {
	admin, err := CreateAdmin(ctx, s.admins, req.Email, req.FullName, req.Password)
	if err != nil {
		return nil, err
	}
	s.audit.logAudit(ctx, actingAdminID, admin.ID, models.AuditCreate, models.TargetAdmin, map[string]string{"email": admin.Email})
	return admin, nil
}

// CreateAdmin is shared with the migrate CLI's seed-admin command.
func CreateAdmin(ctx context.Context, admins repositories.AdminRepository, email, fullName, password string) (*models.Admin, error) {
	email = normalizeEmail(email)
	if !utils.IsStrongPassword(password) {
		return nil, errValidation("Password must be at least 8 characters and include upper-case, lower-case, digit and symbol")
	}
	if !utils.ValidateEmail(ctx, email, false) {
		return nil, errValidation("Invalid email address")
	}

	if existing, err := admins.GetByEmail(ctx, email); err != nil {
		return nil, errInternal("Failed to check email", err)
	} else if existing != nil {
		return nil, errConflict("Email already registered", utils.ErrEmailExists)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, errInternal("Failed to hash password", err)
	}
	admin := &models.Admin{
		ID:           uuid.New(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
	}
	if err := admins.Create(ctx, admin); err != nil {
		if errors.Is(err, utils.ErrEmailExists) {
			return nil, errConflict("Email already registered", err)
		}
		return nil, errInternal("Failed to create admin", err)
	}
	return admin, nil
}

func (s *AdminAuthService) Signin(ctx context.Context, req dtos.SignInRequest, ip string) (*models.Admin, *SessionTokens, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, nil, errInternal("Failed to load admin", err)
	}
	if admin == nil {
		return nil, nil, errInvalidCredentials()
	}

	if err := s.gate.check(ctx, admin.ID, admin.PasswordHash, req.Password); err != nil {
		return nil, nil, err
	}

	session, err := issueSession(ctx, s.cfg, s.jwt, s.tokens, admin.ID, ip)
	if err != nil {
		return nil, nil, err
	}
	return admin, session, nil
}

func (s *AdminAuthService) Refresh(ctx context.Context, refreshToken, ip string) (*SessionTokens, error) {
	access, refresh, err := s.jwt.RefreshToken(ctx, refreshToken, ip, s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, errRefresh(err)
	}
	return &SessionTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AdminAuthService) Signout(ctx context.Context, refreshToken string) error {
	if err := s.jwt.Logout(ctx, refreshToken); err != nil {
		return errInternal("Failed to sign out", err)
	}
	return nil
}
