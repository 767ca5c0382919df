package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

type MailProvider string

const (
	MailProviderSendGrid MailProvider = "sendgrid"
	MailProviderSMTP     MailProvider = "smtp"
)

// Config holds all application configuration, including secrets and flags.
type Config struct {
	OrganizationName   string
	AppName            string
	Env                string
	AppPort            string
	AppUrl             string
	CORSAllowedOrigins []string

	DBUrl               string
	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	MailProvider   MailProvider
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string

	TwilioAccountSID string
	TwilioAuthToken  string
	GCSBucket        string

	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	MaxLoginAttempts int
	AttemptWindow    time.Duration
	LockDuration     time.Duration

	OptimisticLockAttempts int

	// Static flags, read once at start-up from LaunchDarkly or the environment.
	LDFlag_SendgridSandboxMode     bool
	LDFlag_SendgridFromEmail       string
	LDFlag_CORSHighSecurity        bool
	LDFlag_ValidatePhoneWithTwilio bool
	LDFlag_SeedDbWithTestData      bool
	LDFlag_SecureCookies           bool
}

const (
	DefaultAppName       = "hostel-service"
	LDConnectionTimeout  = 5 * time.Second
	LDServerContextKind  = "service"
	defaultSMTPPort      = 587
	defaultFromEmail     = "no-reply@hostel.local"
	bwsProjectNamePrefix = "hostel-service-"
)

// secretKeys are read from Bitwarden when BWS_ACCESS_TOKEN is set and from
// the environment otherwise.
var secretKeys = []string{
	"DB_URL",
	"JWT_SECRET",
	"STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET",
	"SENDGRID_API_KEY",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
	"TWILIO_ACCOUNT_SID",
	"TWILIO_AUTH_TOKEN",
	"GCS_BUCKET",
	"LD_SDK_KEY",
}

// LoadConfig builds the Config from .env, the environment, optional Bitwarden
// secrets and optional LaunchDarkly flags. Missing required values are fatal.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file loaded")
	}

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	utils.Logger.Debugf("App can be accessed at: %s", appUrl)

	secrets := loadSecrets(env)

	cfg := &Config{
		OrganizationName:   constants.OrganizationName,
		AppName:            DefaultAppName,
		Env:                env,
		AppPort:            appPort,
		AppUrl:             strings.TrimRight(appUrl, "/"),
		CORSAllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),

		DBUrl:               secrets["DB_URL"],
		JWTSecret:           secrets["JWT_SECRET"],
		StripeSecretKey:     secrets["STRIPE_SECRET_KEY"],
		StripeWebhookSecret: secrets["STRIPE_WEBHOOK_SECRET"],
		Currency:            envOr("CURRENCY", constants.DefaultCurrency),

		MailProvider:   MailProvider(strings.ToLower(envOr("MAIL_PROVIDER", string(MailProviderSendGrid)))),
		SendGridAPIKey: secrets["SENDGRID_API_KEY"],
		SMTPHost:       secrets["SMTP_HOST"],
		SMTPPort:       atoiOr(secrets["SMTP_PORT"], defaultSMTPPort),
		SMTPUsername:   secrets["SMTP_USERNAME"],
		SMTPPassword:   secrets["SMTP_PASSWORD"],

		TwilioAccountSID: secrets["TWILIO_ACCOUNT_SID"],
		TwilioAuthToken:  secrets["TWILIO_AUTH_TOKEN"],
		GCSBucket:        secrets["GCS_BUCKET"],

		AccessTokenTTL:   constants.AccessTokenTTL,
		RefreshTokenTTL:  constants.RefreshTokenTTL,
		MaxLoginAttempts: constants.MaxLoginAttempts,
		AttemptWindow:    constants.AttemptWindow,
		LockDuration:     constants.LockDuration,

		OptimisticLockAttempts: atoiOr(os.Getenv("OPTIMISTIC_LOCK_ATTEMPTS"), constants.OptimisticLockAttempts),
	}

	for key, val := range map[string]string{
		"DB_URL":                cfg.DBUrl,
		"JWT_SECRET":            cfg.JWTSecret,
		"STRIPE_SECRET_KEY":     cfg.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": cfg.StripeWebhookSecret,
	} {
		if val == "" {
			utils.Logger.Fatalf("%s not found in secrets or environment", key)
		}
	}

	switch cfg.MailProvider {
	case MailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			utils.Logger.Fatal("SENDGRID_API_KEY is required when MAIL_PROVIDER=sendgrid")
		}
	case MailProviderSMTP:
		if cfg.SMTPHost == "" {
			utils.Logger.Fatal("SMTP_HOST is required when MAIL_PROVIDER=smtp")
		}
	default:
		utils.Logger.Fatalf("Unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}

	loadFlags(cfg, secrets["LD_SDK_KEY"])

	utils.Logger.Infof("Loaded config for %s (%s)", cfg.AppName, cfg.Env)
	return cfg
}

func loadSecrets(env string) map[string]string {
	out := make(map[string]string, len(secretKeys))
	for _, k := range secretKeys {
		out[k] = os.Getenv(k)
	}

	token := os.Getenv("BWS_ACCESS_TOKEN")
	if token == "" {
		return out
	}

	client, err := utils.NewBWSSecretsClient(token, os.Getenv("BWS_ORG_ID"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize Bitwarden secrets client")
	}
	defer client.Close()

	project := bwsProjectNamePrefix + env
	utils.Logger.Debugf("Fetching secrets from Bitwarden project %s", project)
	bwsSecrets, err := client.GetBWSSecrets(project)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch secrets from Bitwarden")
	}
	for k, v := range bwsSecrets {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// loadFlags fills the LDFlag_* fields. Without an SDK key every flag takes
// its environment default.
func loadFlags(cfg *Config, sdkKey string) {
	cfg.LDFlag_SendgridSandboxMode = envBool("SENDGRID_SANDBOX_MODE", cfg.Env != "prod")
	cfg.LDFlag_SendgridFromEmail = envOr("SENDGRID_FROM_EMAIL", defaultFromEmail)
	cfg.LDFlag_CORSHighSecurity = envBool("CORS_HIGH_SECURITY", cfg.Env == "prod")
	cfg.LDFlag_ValidatePhoneWithTwilio = envBool("VALIDATE_PHONE_WITH_TWILIO", false)
	cfg.LDFlag_SeedDbWithTestData = envBool("SEED_DB_WITH_TEST_DATA", false)
	cfg.LDFlag_SecureCookies = envBool("SECURE_COOKIES", cfg.Env == "prod")

	if sdkKey == "" {
		return
	}

	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}

	context := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), fmt.Sprintf("%s-%s", cfg.AppName, cfg.Env))

	boolFlag := func(key string, dst *bool) {
		v, err := ldClient.BoolVariation(key, context, *dst)
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
		}
		utils.Logger.Debugf("%s flag: %t", key, v)
		*dst = v
	}

	boolFlag("sendgrid_sandbox_mode", &cfg.LDFlag_SendgridSandboxMode)
	boolFlag("cors_high_security", &cfg.LDFlag_CORSHighSecurity)
	boolFlag("validate_phone_with_twilio", &cfg.LDFlag_ValidatePhoneWithTwilio)
	boolFlag("seed_db_with_test_data", &cfg.LDFlag_SeedDbWithTestData)
	boolFlag("secure_cookies", &cfg.LDFlag_SecureCookies)

	fromEmail, err := ldClient.StringVariation("sendgrid_from_email", context, cfg.LDFlag_SendgridFromEmail)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	if fromEmail == "" {
		utils.Logger.Fatal("sendgrid_from_email flag is empty")
	}
	cfg.LDFlag_SendgridFromEmail = fromEmail
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		utils.Logger.Warnf("Invalid boolean for %s=%q, using %t", key, v, def)
		return def
	}
	return b
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		utils.Logger.Warnf("Invalid integer %q, using %d", s, def)
		return def
	}
	return n
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
