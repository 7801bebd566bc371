package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr          string
	MongoURI      string
	MongoDatabase string
	Timeout       time.Duration
	Timezone      string
	LogLevel      string

	FormCollection               string
	SubmissionCollection         string
	SettingsCollection           string
	PublicationCollection        string
	LocationCollection           string
	FailedNotificationCollection string

	JWTConfigs       []JWTConfig
	JWTAudience      string
	AdminEmailDomain string
	AllowedOrigins   []string

	BlobBucket          string
	BlobRegion          string
	BlobEndpoint        string
	BlobAccessKeyID     string
	BlobSecretAccessKey string
	MediaBaseURL        string
	BlobURLTTL          time.Duration
	MaxUploadBytes      int64

	MessengerEndpoint    string
	MessengerDestination string
	MessengerTimeout     time.Duration
	AdminReviewBaseURL   string
}

// FromEnv reads a .env file when present, then the process environment.
// Only malformed values are reported; see RequireServer for mandatory keys.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	timeout, err := durationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	urlTTL, err := durationEnv("BLOB_URL_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}
	messengerTimeout, err := durationEnv("MESSENGER_GATEWAY_TIMEOUT", 3*time.Second)
	if err != nil {
		return Config{}, err
	}

	maxUpload := int64(10 << 20)
	if raw := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", raw)
		}
		maxUpload = parsed
	}

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_SSO_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_SSO_JWT_ISSUER", "crust-sso"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_PORTAL_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: strings.TrimSpace(os.Getenv("AUTH_PORTAL_JWT_ISSUER")),
			Secret: []byte(secret),
		})
	}
	return Config{
		Addr:          envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:      envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase: envOrDefault("MONGO_DB", "crust-site"),
		Timeout:       timeout,
		Timezone:      envOrDefault("TIMEZONE", "Europe/Oslo"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),

		FormCollection:               envOrDefault("FORMS_COLLECTION", "forms"),
		SubmissionCollection:         envOrDefault("SUBMISSIONS_COLLECTION", "formSubmissions"),
		SettingsCollection:           envOrDefault("SETTINGS_COLLECTION", "siteSettings"),
		PublicationCollection:        envOrDefault("PUBLICATIONS_COLLECTION", "publications"),
		LocationCollection:           envOrDefault("LOCATIONS_COLLECTION", "locations"),
		FailedNotificationCollection: envOrDefault("FAILED_NOTIFICATION_COLLECTION", "failed_notifications"),

		JWTConfigs:       jwtConfigs,
		JWTAudience:      strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		AdminEmailDomain: strings.TrimPrefix(envOrDefault("ADMIN_EMAIL_DOMAIN", "crust.no"), "@"),
		AllowedOrigins:   parseList("API_ALLOWED_ORIGINS", []string{"*"}),

		BlobBucket:          strings.TrimSpace(os.Getenv("BLOB_BUCKET")),
		BlobRegion:          envOrDefault("BLOB_REGION", "eu-north-1"),
		BlobEndpoint:        strings.TrimSpace(os.Getenv("BLOB_ENDPOINT")),
		BlobAccessKeyID:     strings.TrimSpace(os.Getenv("BLOB_ACCESS_KEY_ID")),
		BlobSecretAccessKey: strings.TrimSpace(os.Getenv("BLOB_SECRET_ACCESS_KEY")),
		MediaBaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("MEDIA_BASE_URL")), "/"),
		BlobURLTTL:          urlTTL,
		MaxUploadBytes:      maxUpload,

		MessengerEndpoint:    strings.TrimRight(strings.TrimSpace(os.Getenv("MESSENGER_GATEWAY_URL")), "/"),
		MessengerDestination: strings.TrimSpace(os.Getenv("MESSENGER_GATEWAY_DESTINATION")),
		MessengerTimeout:     messengerTimeout,
		AdminReviewBaseURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("ADMIN_REVIEW_BASE_URL")), "/"),
	}, nil
}

// RequireServer checks the keys the HTTP server cannot start without.
func (c Config) RequireServer() error {
	if len(c.JWTConfigs) == 0 {
		return errors.New("JWT secrets not configured. Set AUTH_SSO_JWT_SECRET")
	}
	if c.BlobBucket == "" {
		return errors.New("BLOB_BUCKET must be configured")
	}
	return nil
}

// Load reads the server configuration and exits the process when it is unusable.
func Load() Config {
	cfg, err := FromEnv()
	if err == nil {
		err = cfg.RequireServer()
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// NewLogger builds the production JSON logger at the configured level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("service", "site-api")), nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
