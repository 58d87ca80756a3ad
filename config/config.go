// config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"

	"github.com/evea/evea_backend/models"
)

// Config stores all configuration for the service.
// Values come from environment variables or a local .env file.
type Config struct {
	Env  string `mapstructure:"ENV"`
	Port string `mapstructure:"PORT"`

	MongoURI string `mapstructure:"MONGO_URI"`
	DBName   string `mapstructure:"DB_NAME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	RegistrationTokenTTL time.Duration `mapstructure:"REGISTRATION_TOKEN_TTL"`
	AccessTokenTTL       time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL      time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	EmailTokenTTL        time.Duration `mapstructure:"EMAIL_TOKEN_TTL"`
	PasswordResetTTL     time.Duration `mapstructure:"PASSWORD_RESET_TTL"`

	MaxFailedLogins      int           `mapstructure:"MAX_FAILED_LOGINS"`
	LoginLockoutDuration time.Duration `mapstructure:"LOGIN_LOCKOUT_DURATION"`

	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   int    `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	MailFrom   string `mapstructure:"MAIL_FROM"`
	AppBaseURL string `mapstructure:"APP_BASE_URL"`
	APIBaseURL string `mapstructure:"API_BASE_URL"`

	DriveCredentialsFile   string `mapstructure:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	DriveCredentialsBase64 string `mapstructure:"GOOGLE_DRIVE_CREDENTIALS_BASE64"`
	DriveFolderID          string `mapstructure:"GOOGLE_DRIVE_FOLDER_ID"`
	DrivePublicLinks       bool   `mapstructure:"GOOGLE_DRIVE_PUBLIC_LINKS"`
	UploadDir              string `mapstructure:"UPLOAD_DIR"`
	UploadConcurrency      int    `mapstructure:"UPLOAD_CONCURRENCY"`

	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleCertsURL string `mapstructure:"GOOGLE_CERTS_URL"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	AdminName     string `mapstructure:"ADMIN_NAME"`

	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// Built from DOC_<TYPE>_MAX_BYTES and DOC_<TYPE>_EXTENSIONS on top of the defaults
	DocumentPolicies models.DocumentPolicies `mapstructure:"-"`
}

var defaults = map[string]interface{}{
	"ENV":                    "development",
	"PORT":                   "8080",
	"MONGO_URI":              "mongodb://localhost:27017",
	"DB_NAME":                "evea",
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_DB":               0,
	"REGISTRATION_TOKEN_TTL": "2h",
	"ACCESS_TOKEN_TTL":       "24h",
	"REFRESH_TOKEN_TTL":      "720h",
	"EMAIL_TOKEN_TTL":        "24h",
	"PASSWORD_RESET_TTL":     "30m",
	"MAX_FAILED_LOGINS":      5,
	"LOGIN_LOCKOUT_DURATION": "30m",
	"SMTP_PORT":              587,
	"MAIL_FROM":              "EVEA <no-reply@evea.in>",
	"APP_BASE_URL":           "http://localhost:3000",
	"API_BASE_URL":           "http://localhost:8080",
	"UPLOAD_DIR":             "uploads",
	"UPLOAD_CONCURRENCY":     3,
	"GOOGLE_CERTS_URL":       "https://www.googleapis.com/oauth2/v3/certs",
	"ADMIN_NAME":             "EVEA Admin",
	"REQUEST_TIMEOUT":        "10s",
}

// Load reads configuration from the environment and an optional .env file in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envKeys() {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	policies, err := loadDocumentPolicies(v)
	if err != nil {
		return nil, err
	}
	cfg.DocumentPolicies = policies

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if len(c.JWTSecret) < 32 && !c.IsDevelopment() {
		return errors.New("JWT_SECRET must be at least 32 characters outside development")
	}
	if c.MaxFailedLogins < 1 {
		return errors.New("MAX_FAILED_LOGINS must be positive")
	}
	if c.UploadConcurrency < 1 {
		c.UploadConcurrency = 1
	}
	return nil
}

// IsDevelopment reports whether the service runs in a dev environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "test"
}

// DriveEnabled reports whether documents go to Google Drive instead of local disk
func (c *Config) DriveEnabled() bool {
	return c.DriveCredentialsFile != "" || c.DriveCredentialsBase64 != ""
}

// SMTPEnabled reports whether outbound mail is configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envKeys() []string {
	keys := []string{
		"SMTP_HOST", "SMTP_USER", "SMTP_PASS", "JWT_SECRET", "REDIS_PASSWORD",
		"GOOGLE_DRIVE_CREDENTIALS_FILE", "GOOGLE_DRIVE_CREDENTIALS_BASE64", "GOOGLE_DRIVE_FOLDER_ID", "GOOGLE_DRIVE_PUBLIC_LINKS",
		"GOOGLE_CLIENT_ID", "ADMIN_EMAIL", "ADMIN_PASSWORD", "CORS_ALLOWED_ORIGINS",
	}
	for key := range defaults {
		keys = append(keys, key)
	}
	return keys
}

// loadDocumentPolicies applies per-type overrides to the default policies
func loadDocumentPolicies(v *viper.Viper) (models.DocumentPolicies, error) {
	policies := models.DefaultDocumentPolicies()
	for _, docType := range models.DocumentTypes {
		prefix := "DOC_" + envName(string(docType))
		policy := policies[docType]

		maxKey := prefix + "_MAX_BYTES"
		_ = v.BindEnv(maxKey)
		if v.IsSet(maxKey) {
			maxBytes := v.GetInt64(maxKey)
			if maxBytes <= 0 {
				return nil, fmt.Errorf("%s must be a positive byte count", maxKey)
			}
			policy.MaxBytes = maxBytes
		}

		extKey := prefix + "_EXTENSIONS"
		_ = v.BindEnv(extKey)
		if v.IsSet(extKey) {
			var exts []string
			for _, ext := range strings.Split(v.GetString(extKey), ",") {
				ext = strings.ToLower(strings.TrimSpace(ext))
				if ext == "" {
					continue
				}
				if !strings.HasPrefix(ext, ".") {
					ext = "." + ext
				}
				exts = append(exts, ext)
			}
			if len(exts) == 0 {
				return nil, fmt.Errorf("%s must list at least one extension", extKey)
			}
			policy.AllowedExtensions = exts
		}

		policies[docType] = policy
	}
	return policies, nil
}

// envName turns businessRegistration into BUSINESS_REGISTRATION
func envName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
