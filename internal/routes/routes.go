package routes

const (
	// Health / ops
	Health  = "/health"
	Metrics = "/metrics"

	Base = "/api/v1"

	// Auth
	TenantSignup  = "/api/v1/auth/tenant/signup"
	TenantSignin  = "/api/v1/auth/tenant/signin"
	TenantRefresh = "/api/v1/auth/tenant/refresh"
	TenantSignout = "/api/v1/auth/tenant/signout"
	AdminSignup   = "/api/v1/auth/admin/signup"
	AdminSignin   = "/api/v1/auth/admin/signin"
	AdminRefresh  = "/api/v1/auth/admin/refresh"
	AdminSignout  = "/api/v1/auth/admin/signout"

	EmailVerificationRequest = "/api/v1/email-verification/request"
	EmailVerificationVerify  = "/api/v1/email-verification/verify"

	PasswordResetRequest = "/api/v1/password-reset/request"
	PasswordResetVerify  = "/api/v1/password-reset/verify"
	PasswordResetConfirm = "/api/v1/password-reset/reset"

	// Tenants
	TenantsMe   = "/api/v1/tenants/me"
	Tenants     = "/api/v1/tenants"
	TenantsByID = "/api/v1/tenants/{id}"

	// Rooms
	Rooms        = "/api/v1/rooms"
	RoomByNumber = "/api/v1/rooms/{roomNumber}"
	RoomPhoto    = "/api/v1/rooms/{roomNumber}/photo"
	RoomRelease  = "/api/v1/rooms/{roomNumber}/release"

	// Bookings, checkout and payments
	Bookings    = "/api/v1/bookings"
	BookingsMe  = "/api/v1/bookings/me"
	Checkout    = "/api/v1/checkout"
	Webhook     = "/api/v1/webhook"
	Payments    = "/api/v1/payments"
	PaymentsMe  = "/api/v1/payments/me"
	PaymentByID = "/api/v1/payments/{id}"
	// AdminPaymentByID serves the same record without the ownership check.
	AdminPaymentByID = "/api/v1/admin/payments/{id}"

	// Issues & technicians
	Issues         = "/api/v1/issues"
	IssuesMe       = "/api/v1/issues/me"
	IssueAssign    = "/api/v1/issues/{id}/assign"
	IssueResolve   = "/api/v1/issues/{id}/resolve"
	Technicians    = "/api/v1/technicians"
	TechnicianByID = "/api/v1/technicians/{id}"

	// Advertisements
	Advertisements        = "/api/v1/advertisements"
	AdvertisementsMe      = "/api/v1/advertisements/me"
	AdvertisementsPending = "/api/v1/advertisements/pending"
	AdvertisementByID     = "/api/v1/advertisements/{id}"
	AdvertisementApprove  = "/api/v1/advertisements/{id}/approve"
	AdvertisementReject   = "/api/v1/advertisements/{id}/reject"

	// Visitors
	VisitorsSignIn  = "/api/v1/visitors/sign-in"
	VisitorsSignOut = "/api/v1/visitors/{id}/sign-out"
	VisitorsMe      = "/api/v1/visitors/me"
	Visitors        = "/api/v1/visitors"

	// Notifications
	Notifications        = "/api/v1/notifications"
	NotificationRead     = "/api/v1/notifications/{id}/read"
	NotificationsReadAll = "/api/v1/notifications/read-all"
)
