package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	MigrationsDir string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Refresh token config
	RefreshTokenExpiryDuration time.Duration
	RefreshTokenCookieName     string
	RefreshTokenCookiePath     string
	RefreshTokenSecret         string

	// Financial fallbacks. These are deliberately configuration, not code
	// constants: a silent numeric fallback inside money math needs explicit
	// provenance.
	FallbackExchangeRate decimal.Decimal // ARS per USD, used when no rate row exists
	CommissionSplitRatio decimal.Decimal // share of the primary seller when a secondary exists

	// TTL of the server-issued token that confirms destructive account deletes.
	DeleteConfirmationTTL time.Duration

	// Users allowed to manage the platform-global plan catalogue. Empty
	// means nobody: plan management stays locked until it is configured.
	PlatformAdminUserIDs []string

	// External OAuth providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`

	// Analytics
	PosthogAPIKey   string
	PosthogEndpoint string

	// Rate limiting for public auth routes, limiter format (e.g. "20-M")
	AuthRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("MIGRATIONS_DIR", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "travesia-backend")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "rtid")
	viper.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/api/v1/auth")
	viper.SetDefault("REFRESH_TOKEN_SECRET", "default_insecure_refresh_secret_please_change_this_!@#$")
	viper.SetDefault("FALLBACK_EXCHANGE_RATE", "1000")
	viper.SetDefault("COMMISSION_SPLIT_RATIO", "0.5")
	viper.SetDefault("DELETE_CONFIRMATION_TTL", "5m")
	viper.SetDefault("PLATFORM_ADMIN_USER_IDS", "")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://app.posthog.com")
	viper.SetDefault("AUTH_RATE_LIMIT", "20-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.MigrationsDir = viper.GetString("MIGRATIONS_DIR")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiry, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiry = time.Hour
		log.Printf("Warning: invalid JWT_EXPIRY_DURATION (%q). Defaulting to %s.\n", jwtExpiryStr, jwtExpiry)
	}
	cfg.JWTExpiryDuration = jwtExpiry
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	refreshExpiryStr := viper.GetString("REFRESH_TOKEN_EXPIRY_DURATION")
	refreshExpiry, err := time.ParseDuration(refreshExpiryStr)
	if err != nil {
		refreshExpiry = time.Hour * 24 * 7
		log.Printf("Warning: invalid REFRESH_TOKEN_EXPIRY_DURATION (%q). Defaulting to %s.\n", refreshExpiryStr, refreshExpiry)
	}
	cfg.RefreshTokenExpiryDuration = refreshExpiry
	cfg.RefreshTokenCookieName = viper.GetString("REFRESH_TOKEN_COOKIE_NAME")
	cfg.RefreshTokenCookiePath = viper.GetString("REFRESH_TOKEN_COOKIE_PATH")
	cfg.RefreshTokenSecret = viper.GetString("REFRESH_TOKEN_SECRET")
	if cfg.RefreshTokenSecret == "default_insecure_refresh_secret_please_change_this_!@#$" {
		log.Println("Warning: REFRESH_TOKEN_SECRET not set, using default insecure secret. THIS IS NOT FOR PRODUCTION.")
	}

	fallbackRateStr := viper.GetString("FALLBACK_EXCHANGE_RATE")
	fallbackRate, err := decimal.NewFromString(fallbackRateStr)
	if err != nil || fallbackRate.LessThanOrEqual(decimal.Zero) {
		fallbackRate = decimal.NewFromInt(1000)
		log.Printf("Warning: invalid FALLBACK_EXCHANGE_RATE (%q). Defaulting to %s ARS/USD.\n", fallbackRateStr, fallbackRate)
	}
	cfg.FallbackExchangeRate = fallbackRate

	splitStr := viper.GetString("COMMISSION_SPLIT_RATIO")
	split, err := decimal.NewFromString(splitStr)
	if err != nil || split.LessThanOrEqual(decimal.Zero) || split.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		split = decimal.NewFromFloat(0.5)
		log.Printf("Warning: invalid COMMISSION_SPLIT_RATIO (%q). Defaulting to %s.\n", splitStr, split)
	}
	cfg.CommissionSplitRatio = split

	confirmTTLStr := viper.GetString("DELETE_CONFIRMATION_TTL")
	confirmTTL, err := time.ParseDuration(confirmTTLStr)
	if err != nil {
		confirmTTL = 5 * time.Minute
		log.Printf("Warning: invalid DELETE_CONFIRMATION_TTL (%q). Defaulting to %s.\n", confirmTTLStr, confirmTTL)
	}
	cfg.DeleteConfirmationTTL = confirmTTL

	for _, id := range strings.Split(viper.GetString("PLATFORM_ADMIN_USER_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.PlatformAdminUserIDs = append(cfg.PlatformAdminUserIDs, id)
		}
	}
	if len(cfg.PlatformAdminUserIDs) == 0 {
		log.Println("Warning: PLATFORM_ADMIN_USER_IDS not set. Plan management endpoints are disabled.")
	}

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google sign-in will not function.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")
	cfg.AuthRateLimit = viper.GetString("AUTH_RATE_LIMIT")

	return cfg, nil
}
