package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// minBcryptCost is the lowest accepted password work factor.
const minBcryptCost = 10

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Token formats accepted by AUTH_TOKEN_FORMAT.
const (
	TokenPaseto = "paseto"
	TokenJWT    = "jwt"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	Razorpay  RazorpayConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
}

type StoreConfig struct {
	Driver string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	TokenFormat string
	// Signing/encryption secret; exactly 32 bytes for PASETO v4.local,
	// at least 32 bytes for JWT.
	TokenKey            []byte
	AccessTokenDuration time.Duration
	BcryptCost          int
	// Report every sign-in failure as "Invalid credentials".
	UniformSignInErrors bool
}

type OAuthConfig struct {
	Providers          []string
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	// When set, /sign-in-with-oauth requires a matching X-API-Key header.
	InternalAPIKey string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FrontendURL  string
	ContactInbox string // receives contact form submissions
}

type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// Load reads configuration from environment variables, loading .env first
// when present, and validates it.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreMongo),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_DB_URL", ""),
			Database:       getEnv("MONGO_DB_NAME", "devexTech-DB"),
			ConnectTimeout: getDurationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "devex"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenFormat:         getEnv("AUTH_TOKEN_FORMAT", TokenPaseto),
			TokenKey:            []byte(getEnv("AUTH_SECRET", "")),
			AccessTokenDuration: getDurationEnv("ACCESS_TOKEN_DURATION", 24*time.Hour),
			BcryptCost:          getIntEnv("BCRYPT_COST", 12),
			UniformSignInErrors: getBoolEnv("AUTH_UNIFORM_SIGNIN_ERRORS", false),
		},
		OAuth: OAuthConfig{
			Providers:          getSliceEnv("OAUTH_PROVIDERS", []string{"google", "github"}),
			GoogleClientID:     getEnv("GOOGLE_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_SECRET", ""),
			GitHubClientID:     getEnv("GITHUB_ID", ""),
			GitHubClientSecret: getEnv("GITHUB_SECRET", ""),
			InternalAPIKey:     getEnv("OAUTH_INTERNAL_API_KEY", ""),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_TEST_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_TEST_KEY_SECRET", ""),
			BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			Timeout:   getDurationEnv("RAZORPAY_TIMEOUT", 15*time.Second),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
			ContactInbox: getEnv("CONTACT_INBOX", ""),
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: getIntEnv("RATE_LIMIT_MAX_ATTEMPTS", 10),
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_DB_URL is required when STORE_DRIVER=mongo"))
		}
	case StorePostgres:
	case StoreMemory:
		if !c.Server.IsDevelopment() {
			errs = append(errs, errors.New("STORE_DRIVER=memory is only allowed when APP_ENV=dev"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of mongo, postgres, memory, got %q", c.Store.Driver))
	}

	switch c.Auth.TokenFormat {
	case TokenPaseto:
		if len(c.Auth.TokenKey) != 32 {
			errs = append(errs, fmt.Errorf("AUTH_SECRET must be exactly 32 bytes for paseto tokens, got %d", len(c.Auth.TokenKey)))
		}
	case TokenJWT:
		if len(c.Auth.TokenKey) < 32 {
			errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least 32 bytes for jwt tokens, got %d", len(c.Auth.TokenKey)))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_FORMAT must be paseto or jwt, got %q", c.Auth.TokenFormat))
	}

	if c.Auth.BcryptCost < minBcryptCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}

	if c.Razorpay.KeyID == "" {
		errs = append(errs, errors.New("RAZORPAY_TEST_KEY_ID is required"))
	}
	if c.Razorpay.KeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_TEST_KEY_SECRET is required"))
	}

	if c.OAuth.HasProvider("google") && (c.OAuth.GoogleClientID == "" || c.OAuth.GoogleClientSecret == "") {
		errs = append(errs, errors.New("GOOGLE_ID and GOOGLE_SECRET are required when google is an OAuth provider"))
	}

	return errors.Join(errs...)
}

// HasProvider reports whether name is a configured OAuth provider.
func (c *OAuthConfig) HasProvider(name string) bool {
	return slices.Contains(c.Providers, name)
}

// IsPostgres reports whether the Postgres store is selected.
func (c *StoreConfig) IsPostgres() bool {
	return c.Driver == StorePostgres
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// Enabled reports whether outbound mail is configured.
func (c *EmailConfig) Enabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getDurationEnv reads a whole number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
