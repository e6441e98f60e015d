package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the waitlist service
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Sessions SessionConfig  `yaml:"sessions"`
	Redis    RedisConfig    `yaml:"redis"`
	Identity IdentityConfig `yaml:"identity"`
	Email    EmailConfig    `yaml:"email"`
	AWS      AWSConfig      `yaml:"aws"`
	Admin    AdminConfig    `yaml:"admin"`
	Gate     GateConfig     `yaml:"gate"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int      `yaml:"port" env:"SERVER_PORT"`
	Host                string   `yaml:"host" env:"SERVER_HOST"`
	AllowedOrigins      []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig selects and parameterizes the submission store.
type StoreConfig struct {
	// Driver is one of memory, dynamodb, postgres, firestore.
	Driver      string          `yaml:"driver" env:"STORE_DRIVER"`
	DynamoTable string          `yaml:"dynamo_table" env:"DYNAMO_TABLE"`
	DatabaseURL string          `yaml:"database_url" env:"DATABASE_URL"`
	Firestore   FirestoreConfig `yaml:"firestore"`
}

// FirestoreConfig holds the service-account fields for the document store.
type FirestoreConfig struct {
	ProjectID     string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	ClientEmail   string `yaml:"client_email" env:"FIREBASE_CLIENT_EMAIL"`
	PrivateKey    string `yaml:"private_key" env:"FIREBASE_PRIVATE_KEY"`
	StorageBucket string `yaml:"storage_bucket" env:"FIREBASE_STORAGE_BUCKET"`
	Collection    string `yaml:"collection"`
	BaseURL       string `yaml:"base_url"`
}

// SessionConfig selects the form session store.
type SessionConfig struct {
	// Backend is memory or redis.
	Backend    string `yaml:"backend" env:"SESSION_BACKEND"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// TTL returns the session lifetime.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// RedisConfig holds the Redis connection URL.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// IdentityConfig selects the identity provider.
type IdentityConfig struct {
	// Provider is firebase or local.
	Provider       string         `yaml:"provider" env:"IDENTITY_PROVIDER"`
	APIKey         string         `yaml:"api_key" env:"FIREBASE_API_KEY"`
	BaseURL        string         `yaml:"base_url"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	Accounts       []AdminAccount `yaml:"accounts"`
}

// Timeout returns the provider request timeout.
func (c IdentityConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AdminAccount is an operator credential for the local identity provider.
type AdminAccount struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Disabled bool   `yaml:"disabled"`
}

// EmailConfig selects the mailer and the fixed sender identities.
type EmailConfig struct {
	// Provider is resend, ses or log.
	Provider       string `yaml:"provider" env:"EMAIL_PROVIDER"`
	ResendAPIKey   string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	ResendBaseURL  string `yaml:"resend_base_url"`
	NotifyFrom     string `yaml:"notify_from"`
	NotifyTo       string `yaml:"notify_to" env:"NOTIFY_TO"`
	ReplyFrom      string `yaml:"reply_from"`
	ReplySubject   string `yaml:"reply_subject"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-send timeout.
func (c EmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AWSConfig holds the credentials shared by DynamoDB, SES and S3 clients.
// Empty keys fall back to the default credential chain.
type AWSConfig struct {
	Region    string `yaml:"region" env:"AWS_REGION"`
	AccessKey string `yaml:"access_key" env:"AWS_SES_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"AWS_SES_SECRET_KEY"`
}

// AdminConfig holds admin session cookie settings.
type AdminConfig struct {
	CookieName   string `yaml:"cookie_name"`
	CookieMaxAge int    `yaml:"cookie_max_age"`
	CookieSecure bool   `yaml:"cookie_secure" env:"ADMIN_COOKIE_SECURE"`
}

// GateConfig holds the static passcode.
type GateConfig struct {
	Passcode string `yaml:"passcode" env:"WAITLIST_PASSCODE"`
}

// ExportConfig enables archiving CSV exports to S3.
type ExportConfig struct {
	Bucket string `yaml:"bucket" env:"EXPORT_BUCKET"`
	Prefix string `yaml:"prefix"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level" env:"LOG_LEVEL"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// RedactionEnabled defaults to true.
func (c LoggingConfig) RedactionEnabled() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads configuration from a YAML file and applies defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 60
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.DynamoTable == "" {
		cfg.Store.DynamoTable = "kyozo-waitlist"
	}
	if cfg.Store.Firestore.Collection == "" {
		cfg.Store.Firestore.Collection = "waitlist"
	}
	if cfg.Store.Firestore.BaseURL == "" {
		cfg.Store.Firestore.BaseURL = "https://firestore.googleapis.com/v1"
	}
	if cfg.Sessions.Backend == "" {
		cfg.Sessions.Backend = "memory"
	}
	if cfg.Sessions.TTLMinutes == 0 {
		cfg.Sessions.TTLMinutes = 120
	}
	if cfg.Identity.Provider == "" {
		cfg.Identity.Provider = "local"
	}
	if cfg.Identity.BaseURL == "" {
		cfg.Identity.BaseURL = "https://identitytoolkit.googleapis.com/v1"
	}
	if cfg.Identity.TimeoutSeconds == 0 {
		cfg.Identity.TimeoutSeconds = 15
	}
	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "log"
	}
	if cfg.Email.ResendBaseURL == "" {
		cfg.Email.ResendBaseURL = "https://api.resend.com"
	}
	if cfg.Email.NotifyFrom == "" {
		cfg.Email.NotifyFrom = "Kyozo Waitlist <waitlist@contact.kyozo.com>"
	}
	if cfg.Email.NotifyTo == "" {
		cfg.Email.NotifyTo = "dev@kyozo.com"
	}
	if cfg.Email.ReplyFrom == "" {
		cfg.Email.ReplyFrom = "Will from Kyozo <will@kyozo.com>"
	}
	if cfg.Email.ReplySubject == "" {
		cfg.Email.ReplySubject = "Response from Kyozo Team"
	}
	if cfg.Email.TimeoutSeconds == 0 {
		cfg.Email.TimeoutSeconds = 30
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-west-2"
	}
	if cfg.Admin.CookieName == "" {
		cfg.Admin.CookieName = "kyozo_admin"
	}
	if cfg.Admin.CookieMaxAge == 0 {
		cfg.Admin.CookieMaxAge = 8 * 3600
	}
	if cfg.Gate.Passcode == "" {
		cfg.Gate.Passcode = "KYOZO2026"
	}
	if cfg.Export.Prefix == "" {
		cfg.Export.Prefix = "exports/"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// ParseEnv overrides fields tagged with env from the process environment.
// Unset variables leave the current value alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadFromEnv loads .env (if present), the YAML file, then environment
// overrides.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	// The project's storage bucket doubles as the export archive unless one
	// is set explicitly.
	if cfg.Export.Bucket == "" {
		cfg.Export.Bucket = cfg.Store.Firestore.StorageBucket
	}

	// Service-account keys arrive with escaped newlines from most secret stores.
	cfg.Store.Firestore.PrivateKey = strings.ReplaceAll(cfg.Store.Firestore.PrivateKey, `\n`, "\n")

	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		cfg.Server.Host = "0.0.0.0"
	}
	return cfg, nil
}

// Validate checks the combinations the adapters cannot start without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "memory":
	case "dynamodb":
		if c.Store.DynamoTable == "" {
			errs = append(errs, errors.New("store.dynamo_table is required for dynamodb"))
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	case "firestore":
		fc := c.Store.Firestore
		if fc.ProjectID == "" || fc.ClientEmail == "" || fc.PrivateKey == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID, FIREBASE_CLIENT_EMAIL and FIREBASE_PRIVATE_KEY are required for firestore"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Sessions.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for redis sessions"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Sessions.Backend))
	}
	switch c.Identity.Provider {
	case "local":
	case "firebase":
		if c.Identity.APIKey == "" {
			errs = append(errs, errors.New("FIREBASE_API_KEY is required for firebase identity"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown identity provider %q", c.Identity.Provider))
	}
	switch c.Email.Provider {
	case "log", "ses":
	case "resend":
		if c.Email.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for resend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown email provider %q", c.Email.Provider))
	}
	return errors.Join(errs...)
}
