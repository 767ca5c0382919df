package constants

import "time"

const (
	OrganizationName = "Hostel Management"
	TokenIssuer      = "hostel-service"

	RoleTenant = "tenant"
	RoleAdmin  = "admin"

	TenantSessionCookieName = "tenantSession"
	TenantRefreshCookieName = "tenantRefresh"
	AdminSessionCookieName  = "adminSession"
	AdminRefreshCookieName  = "adminRefresh"

	AccessTokenTTL  = 1 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour

	MaxLoginAttempts = 5
	AttemptWindow    = 15 * time.Minute
	LockDuration     = 30 * time.Minute

	VerificationCodeLength   = 6
	VerificationCodeTTL      = 15 * time.Minute
	MaxVerificationAttempts  = 5
	PasswordResetCodeLength  = 6
	PasswordResetCodeTTL     = 15 * time.Minute
	MaxPasswordResetAttempts = 5

	// OptimisticLockAttempts is how many lost races an edit of a versioned
	// row tolerates before it is reported as a conflict.
	OptimisticLockAttempts = 3

	// CheckoutSessionTTL must stay above the processor's 30 minute floor.
	CheckoutSessionTTL = 35 * time.Minute

	// MinStayMonths is the shortest booking, counted in calendar months from check-in.
	MinStayMonths = 2

	MaxUploadBytes = 16 << 20

	DateLayout = "2006-01-02"

	DefaultCurrency   = "kes"
	PaymentMethodCard = "card"
)

// Checkout session metadata keys. The webhook reads these back.
const (
	MetadataPaymentID  = "paymentId"
	MetadataTenantID   = "tenantId"
	MetadataRoomNumber = "roomNumber"
	MetadataBookingID  = "bookingId"
)

// Cron
const (
	NightlyCleanupCronSpec   = "0 3 * * *"
	VisitorOverstayCronSpec  = "*/5 * * * *"
	NightlyCleanupJobTimeout = 2 * time.Minute
	OverstayJobTimeout       = 1 * time.Minute
	CleanupRetryDelay        = 3 * time.Second
	ProcessedEventRetention  = 30 * 24 * time.Hour
)

// CORSLowSecurityAllowedOriginLocalhost is added to the allowed origins
// unless the cors_high_security flag is on.
const CORSLowSecurityAllowedOriginLocalhost = "http://localhost:5173"

// Email subjects
const (
	EmailSubjectVerification        = "Verify your email address"
	EmailSubjectPasswordReset       = "Your password reset code"
	EmailSubjectPaymentConfirmation = "Payment received - your room is confirmed"
)
