package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/app"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/config"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/controllers"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/metrics"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/middleware"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/routes"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func main() {
	utils.InitLogger(config.DefaultAppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	secret := []byte(cfg.JWTSecret)
	appMetrics := metrics.New()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	tenantRepo := repositories.NewTenantRepository(application.DB, cfg.OptimisticLockAttempts)
	adminRepo := repositories.NewAdminRepository(application.DB)
	loginAttemptsRepo := repositories.NewLoginAttemptsRepository(application.DB)
	tenantTokenRepo := repositories.NewTenantTokenRepository(application.DB)
	adminTokenRepo := repositories.NewAdminTokenRepository(application.DB)
	emailVerificationRepo := repositories.NewEmailVerificationRepository(application.DB)
	passwordResetRepo := repositories.NewPasswordResetRepository(application.DB)
	auditRepo := repositories.NewAdminAuditLogRepository(application.DB)

	roomRepo := repositories.NewRoomRepository(application.DB, cfg.OptimisticLockAttempts)
	bookingRepo := repositories.NewBookingRepository(application.DB)
	paymentRepo := repositories.NewPaymentRepository(application.DB)
	issueRepo := repositories.NewIssueRepository(application.DB)
	technicianRepo := repositories.NewTechnicianRepository(application.DB)
	adRepo := repositories.NewAdvertisementRepository(application.DB)
	visitorRepo := repositories.NewVisitorRepository(application.DB)
	notificationRepo := repositories.NewNotificationRepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), roomRepo, tenantRepo, technicianRepo); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	//----------------------------------------------------------------------
	// External clients
	//----------------------------------------------------------------------
	mailer := services.NewMailer(cfg)
	gateway := services.NewStripeGateway(cfg.StripeSecretKey)
	twilioClient := utils.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	var store services.ObjectStore
	if cfg.GCSBucket != "" {
		gcs, err := services.NewGCSObjectStore(context.Background(), cfg.GCSBucket)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to create GCS client")
		}
		defer gcs.Close()
		store = gcs
	} else {
		utils.Logger.Warn("GCS_BUCKET not set; photo and image uploads are disabled")
		store = services.NewUnconfiguredObjectStore()
	}

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	audit := services.NewAuditLogger(auditRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	verificationService := services.NewEmailVerificationService(emailVerificationRepo, tenantRepo, mailer)

	tenantAuthService := services.NewTenantAuthService(
		cfg,
		tenantRepo,
		loginAttemptsRepo,
		tenantTokenRepo,
		services.NewJWTService(secret, constants.RoleTenant, tenantTokenRepo),
		verificationService,
		twilioClient,
	)
	adminAuthService := services.NewAdminAuthService(
		cfg,
		adminRepo,
		loginAttemptsRepo,
		adminTokenRepo,
		services.NewJWTService(secret, constants.RoleAdmin, adminTokenRepo),
		audit,
	)
	passwordResetService := services.NewPasswordResetService(
		passwordResetRepo,
		tenantRepo,
		adminRepo,
		tenantTokenRepo,
		adminTokenRepo,
		loginAttemptsRepo,
		mailer,
	)

	tenantService := services.NewTenantService(tenantRepo, audit)
	roomService := services.NewRoomService(roomRepo, store, audit)
	bookingService := services.NewBookingService(bookingRepo, appMetrics)
	checkoutService := services.NewCheckoutService(cfg, bookingRepo, roomRepo, tenantRepo, paymentRepo, gateway)
	paymentService := services.NewPaymentService(paymentRepo)
	webhookService := services.NewWebhookService(paymentRepo, tenantRepo, mailer, appMetrics)
	issueService := services.NewIssueService(issueRepo, notificationService, audit)
	technicianService := services.NewTechnicianService(technicianRepo, audit)
	adService := services.NewAdvertisementService(adRepo, store, notificationService, audit)
	visitorService := services.NewVisitorService(visitorRepo, notificationService)

	maintenanceService := services.NewMaintenanceService(
		tenantTokenRepo,
		adminTokenRepo,
		emailVerificationRepo,
		passwordResetRepo,
		paymentRepo,
		visitorService,
	)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	healthController := controllers.NewHealthController(application.DB)
	tenantAuthController := controllers.NewTenantAuthController(cfg, tenantAuthService)
	adminAuthController := controllers.NewAdminAuthController(cfg, adminAuthService)
	accountController := controllers.NewAccountController(verificationService, passwordResetService)
	tenantController := controllers.NewTenantController(tenantService)
	roomController := controllers.NewRoomController(roomService)
	bookingController := controllers.NewBookingController(bookingService, checkoutService, paymentService)
	webhookController := controllers.NewWebhookController(webhookService, cfg.StripeWebhookSecret)
	issueController := controllers.NewIssueController(issueService, technicianService)
	adController := controllers.NewAdvertisementController(adService)
	visitorController := controllers.NewVisitorController(visitorService)
	notificationController := controllers.NewNotificationController(notificationService)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()
	router.Use(middleware.MetricsMiddleware(appMetrics))

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods("GET")
	router.Handle(routes.Metrics, appMetrics.Handler()).Methods("GET")

	router.HandleFunc(routes.TenantSignup, tenantAuthController.SignupHandler).Methods("POST")
	router.HandleFunc(routes.TenantSignin, tenantAuthController.SigninHandler).Methods("POST")
	router.HandleFunc(routes.TenantRefresh, tenantAuthController.RefreshHandler).Methods("POST")
	router.HandleFunc(routes.TenantSignout, tenantAuthController.SignoutHandler).Methods("POST")
	router.HandleFunc(routes.AdminSignin, adminAuthController.SigninHandler).Methods("POST")
	router.HandleFunc(routes.AdminRefresh, adminAuthController.RefreshHandler).Methods("POST")
	router.HandleFunc(routes.AdminSignout, adminAuthController.SignoutHandler).Methods("POST")

	router.HandleFunc(routes.PasswordResetRequest, accountController.RequestPasswordResetHandler).Methods("POST")
	router.HandleFunc(routes.PasswordResetVerify, accountController.VerifyPasswordResetHandler).Methods("POST")
	router.HandleFunc(routes.PasswordResetConfirm, accountController.ResetPasswordHandler).Methods("POST")

	router.HandleFunc(routes.Rooms, roomController.ListHandler).Methods("GET")
	router.HandleFunc(routes.RoomByNumber, roomController.GetHandler).Methods("GET")
	router.HandleFunc(routes.Advertisements, adController.ListApprovedHandler).Methods("GET")

	router.HandleFunc(routes.Webhook, webhookController.WebhookHandler).Methods("POST")

	// Tenant
	tenant := router.NewRoute().Subrouter()
	tenant.Use(middleware.TenantAuthMiddleware(secret))

	tenant.HandleFunc(routes.EmailVerificationRequest, accountController.RequestVerificationHandler).Methods("POST")
	tenant.HandleFunc(routes.EmailVerificationVerify, accountController.VerifyEmailHandler).Methods("POST")

	tenant.HandleFunc(routes.TenantsMe, tenantController.GetMeHandler).Methods("GET")
	tenant.HandleFunc(routes.TenantsMe, tenantController.UpdateMeHandler).Methods("PATCH")

	tenant.HandleFunc(routes.Bookings, bookingController.CreateBookingHandler).Methods("POST")
	tenant.HandleFunc(routes.BookingsMe, bookingController.ListMyBookingsHandler).Methods("GET")
	tenant.HandleFunc(routes.Checkout, bookingController.CheckoutHandler).Methods("POST")
	tenant.HandleFunc(routes.PaymentsMe, bookingController.ListMyPaymentsHandler).Methods("GET")
	tenant.HandleFunc(routes.PaymentByID, bookingController.GetMyPaymentHandler).Methods("GET")

	tenant.HandleFunc(routes.Issues, issueController.CreateIssueHandler).Methods("POST")
	tenant.HandleFunc(routes.IssuesMe, issueController.ListMyIssuesHandler).Methods("GET")

	tenant.HandleFunc(routes.Advertisements, adController.CreateHandler).Methods("POST")
	tenant.HandleFunc(routes.AdvertisementsMe, adController.ListMineHandler).Methods("GET")
	tenant.HandleFunc(routes.AdvertisementByID, adController.DeleteHandler).Methods("DELETE")

	tenant.HandleFunc(routes.VisitorsSignIn, visitorController.SignInHandler).Methods("POST")
	tenant.HandleFunc(routes.VisitorsSignOut, visitorController.SignOutHandler).Methods("POST")
	tenant.HandleFunc(routes.VisitorsMe, visitorController.ListMineHandler).Methods("GET")

	tenant.HandleFunc(routes.Notifications, notificationController.ListHandler).Methods("GET")
	tenant.HandleFunc(routes.NotificationRead, notificationController.MarkReadHandler).Methods("PATCH")
	tenant.HandleFunc(routes.NotificationsReadAll, notificationController.MarkAllReadHandler).Methods("POST")

	// Admin
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(secret))

	admin.HandleFunc(routes.AdminSignup, adminAuthController.SignupHandler).Methods("POST")

	admin.HandleFunc(routes.Tenants, tenantController.ListHandler).Methods("GET")
	admin.HandleFunc(routes.TenantsByID, tenantController.GetHandler).Methods("GET")
	admin.HandleFunc(routes.TenantsByID, tenantController.DeleteHandler).Methods("DELETE")

	admin.HandleFunc(routes.Rooms, roomController.CreateHandler).Methods("POST")
	admin.HandleFunc(routes.RoomByNumber, roomController.UpdateHandler).Methods("PATCH")
	admin.HandleFunc(routes.RoomByNumber, roomController.DeleteHandler).Methods("DELETE")
	admin.HandleFunc(routes.RoomPhoto, roomController.UploadPhotoHandler).Methods("POST")
	admin.HandleFunc(routes.RoomRelease, roomController.ReleaseHandler).Methods("POST")

	admin.HandleFunc(routes.Bookings, bookingController.ListBookingsHandler).Methods("GET")
	admin.HandleFunc(routes.Payments, bookingController.ListPaymentsHandler).Methods("GET")
	admin.HandleFunc(routes.AdminPaymentByID, bookingController.GetPaymentHandler).Methods("GET")

	admin.HandleFunc(routes.Issues, issueController.ListIssuesHandler).Methods("GET")
	admin.HandleFunc(routes.IssueAssign, issueController.AssignIssueHandler).Methods("POST")
	admin.HandleFunc(routes.IssueResolve, issueController.ResolveIssueHandler).Methods("POST")
	admin.HandleFunc(routes.Technicians, issueController.CreateTechnicianHandler).Methods("POST")
	admin.HandleFunc(routes.Technicians, issueController.ListTechniciansHandler).Methods("GET")
	admin.HandleFunc(routes.TechnicianByID, issueController.DeleteTechnicianHandler).Methods("DELETE")

	admin.HandleFunc(routes.AdvertisementsPending, adController.ListPendingHandler).Methods("GET")
	admin.HandleFunc(routes.AdvertisementApprove, adController.ApproveHandler).Methods("POST")
	admin.HandleFunc(routes.AdvertisementReject, adController.RejectHandler).Methods("POST")

	admin.HandleFunc(routes.Visitors, visitorController.ListHandler).Methods("GET")
	admin.HandleFunc(routes.Notifications, notificationController.SendHandler).Methods("POST")

	//----------------------------------------------------------------------
	// Scheduled jobs
	//----------------------------------------------------------------------
	c := cron.New(cron.WithLocation(time.UTC))

	_, schErr1 := c.AddFunc(constants.NightlyCleanupCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.NightlyCleanupJobTimeout)
		defer cancel()
		if e := maintenanceService.CleanupDaily(ctx); e != nil {
			utils.Logger.WithError(e).Error("Scheduled nightly cleanup failed")
		}
	})
	if schErr1 != nil {
		utils.Logger.WithError(schErr1).Fatal("Failed to schedule nightly cleanup job")
	}

	_, schErr2 := c.AddFunc(constants.VisitorOverstayCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.OverstayJobTimeout)
		defer cancel()
		if e := maintenanceService.SweepOverstays(ctx); e != nil {
			utils.Logger.WithError(e).Error("Scheduled visitor overstay sweep failed")
		}
	})
	if schErr2 != nil {
		utils.Logger.WithError(schErr2).Fatal("Failed to schedule visitor overstay job")
	}

	c.Start()
	defer c.Stop()

	allowedOrigins := append([]string{cfg.AppUrl}, cfg.CORSAllowedOrigins...)
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, constants.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
