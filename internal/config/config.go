package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"melhado-backend/internal/compliance"
)

// ExpiryConfig holds the named expiry windows.
type ExpiryConfig struct {
	DocumentExpiringDays     int `mapstructure:"document_days"`
	ExpiryReportDays         int `mapstructure:"report_days"`
	EPCNoticeDays            int `mapstructure:"epc_notice_days"`
	InspectionIntervalMonths int `mapstructure:"inspection_interval_months"`
}

// Windows converts to the compliance thresholds.
func (e ExpiryConfig) Windows() compliance.Windows {
	return compliance.Windows{
		DocumentExpiringDays:     e.DocumentExpiringDays,
		ExpiryReportDays:         e.ExpiryReportDays,
		EPCNoticeDays:            e.EPCNoticeDays,
		InspectionIntervalMonths: e.InspectionIntervalMonths,
	}
}

// Config is the server configuration. Keys match the environment variable
// names, so DATABASE_URL sets database_url and EXPIRY_REPORT_DAYS sets
// expiry.report_days.
type Config struct {
	DatabaseURL               string        `mapstructure:"database_url"`
	Port                      string        `mapstructure:"port"`
	JWTSecret                 string        `mapstructure:"app_jwt_secret"`
	TokenTTL                  time.Duration `mapstructure:"token_ttl"`
	LoginDelay                time.Duration `mapstructure:"login_delay"`
	DemoPassword              string        `mapstructure:"demo_password"`
	SeedDemoData              bool          `mapstructure:"seed_demo_data"`
	TemplatesFile             string        `mapstructure:"templates_file"`
	UploadDir                 string        `mapstructure:"upload_dir"`
	StorageBackend            string        `mapstructure:"storage_backend"`
	FirebaseBucket            string        `mapstructure:"firebase_bucket"`
	FirebaseCredentialsFile   string        `mapstructure:"firebase_credentials_file"`
	FirebaseCredentialsBase64 string        `mapstructure:"firebase_credentials_base64"`
	Expiry                    ExpiryConfig  `mapstructure:"expiry"`
	ExpiryScanInterval        time.Duration `mapstructure:"expiry_scan_interval"` // 0 disables the background scan
}

var defaults = map[string]interface{}{
	"database_url":                      "sqlite://melhado.db",
	"port":                              "8080",
	"app_jwt_secret":                    "",
	"token_ttl":                         "168h",
	"login_delay":                       "1s",
	"demo_password":                     "demo123",
	"seed_demo_data":                    true,
	"templates_file":                    "",
	"upload_dir":                        "./uploads",
	"storage_backend":                   "local",
	"firebase_bucket":                   "",
	"firebase_credentials_file":         "./firebase-service-account.json",
	"firebase_credentials_base64":       "",
	"expiry_scan_interval":              "24h",
	"expiry.document_days":              30,
	"expiry.report_days":                90,
	"expiry.epc_notice_days":            365,
	"expiry.inspection_interval_months": 6,
}

// Load reads .env (if present), then the optional YAML file at path, then
// the process environment, which wins over both.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
			log.Printf("⚠️  Config file %s not found, using defaults and environment", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("APP_JWT_SECRET is required")
	}
	switch c.StorageBackend {
	case "local":
	case "firebase":
		if c.FirebaseBucket == "" {
			return errors.New("FIREBASE_BUCKET is required for the firebase storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.ExpiryScanInterval < 0 {
		return fmt.Errorf("EXPIRY_SCAN_INTERVAL must not be negative, got %s", c.ExpiryScanInterval)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	e := c.Expiry
	if e.DocumentExpiringDays < 0 || e.ExpiryReportDays < 0 || e.EPCNoticeDays < 0 || e.InspectionIntervalMonths <= 0 {
		return errors.New("expiry windows must not be negative and the inspection interval must be positive")
	}
	return nil
}
