package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Upload UploadConfig
	Log    LogConfig
	CORS   CORSConfig
	Email  EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds object storage settings. PreviewsBucket is the public bucket
// for preview media; SourceBucket is the private bucket for purchasable
// source archives. PublicBaseURL is the CDN-style base URL that previews-bucket
// objects are served from.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	PreviewsBucket string `mapstructure:"previews_bucket"`
	SourceBucket   string `mapstructure:"source_bucket"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	PresignExpiry  int64  `mapstructure:"presign_expiry"`
}

// UploadConfig holds the upload pipeline constants. The coordinator endpoints
// and the client driver both take this struct, so the two sides always agree
// on chunk size and thresholds.
type UploadConfig struct {
	// ChunkSize is the multipart part size. Must be at least the store's
	// 5 MiB multipart minimum, which applies to every part except the last.
	ChunkSize int64 `mapstructure:"chunk_size"`
	// SimpleThreshold is the size at which uploads switch from the
	// single-request path to the chunked path.
	SimpleThreshold int64 `mapstructure:"simple_threshold"`
	// MaxFileSize is the hard ceiling; larger files are rejected before any
	// network call.
	MaxFileSize int64 `mapstructure:"max_file_size"`
	// PartConcurrency bounds how many part PUTs the client driver runs at once.
	PartConcurrency int `mapstructure:"part_concurrency"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// Load reads configuration from environment variables with the TEMPLORA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TEMPLORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "templora")
	v.SetDefault("db.password", "templora_secret")
	v.SetDefault("db.name", "templora_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "templora")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.previews_bucket", "templora-previews")
	v.SetDefault("s3.source_bucket", "templora-source-files")
	v.SetDefault("s3.public_base_url", "https://previews.templora.com")
	v.SetDefault("s3.presign_expiry", 3600)

	// Upload defaults
	v.SetDefault("upload.chunk_size", 5*1024*1024)
	v.SetDefault("upload.simple_threshold", 4*1024*1024)
	v.SetDefault("upload.max_file_size", 1024*1024*1024)
	v.SetDefault("upload.part_concurrency", 3)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@templora.com")
	v.SetDefault("email.from_name", "Templora")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "TEMPLORA_SERVER_PORT",
		"server.read_timeout":     "TEMPLORA_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "TEMPLORA_SERVER_WRITE_TIMEOUT",
		"server.environment":      "TEMPLORA_SERVER_ENVIRONMENT",
		"db.host":                 "TEMPLORA_DB_HOST",
		"db.port":                 "TEMPLORA_DB_PORT",
		"db.user":                 "TEMPLORA_DB_USER",
		"db.password":             "TEMPLORA_DB_PASSWORD",
		"db.name":                 "TEMPLORA_DB_NAME",
		"db.sslmode":              "TEMPLORA_DB_SSLMODE",
		"db.max_open":             "TEMPLORA_DB_MAX_OPEN",
		"db.max_idle":             "TEMPLORA_DB_MAX_IDLE",
		"jwt.secret":              "TEMPLORA_JWT_SECRET",
		"jwt.access_expiry":       "TEMPLORA_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":      "TEMPLORA_JWT_REFRESH_EXPIRY",
		"jwt.issuer":              "TEMPLORA_JWT_ISSUER",
		"s3.region":               "TEMPLORA_S3_REGION",
		"s3.endpoint":             "TEMPLORA_S3_ENDPOINT",
		"s3.access_key":           "TEMPLORA_S3_ACCESS_KEY",
		"s3.secret_key":           "TEMPLORA_S3_SECRET_KEY",
		"s3.previews_bucket":      "TEMPLORA_S3_PREVIEWS_BUCKET",
		"s3.source_bucket":        "TEMPLORA_S3_SOURCE_BUCKET",
		"s3.public_base_url":      "TEMPLORA_S3_PUBLIC_BASE_URL",
		"s3.presign_expiry":       "TEMPLORA_S3_PRESIGN_EXPIRY",
		"upload.chunk_size":       "TEMPLORA_UPLOAD_CHUNK_SIZE",
		"upload.simple_threshold": "TEMPLORA_UPLOAD_SIMPLE_THRESHOLD",
		"upload.max_file_size":    "TEMPLORA_UPLOAD_MAX_FILE_SIZE",
		"upload.part_concurrency": "TEMPLORA_UPLOAD_PART_CONCURRENCY",
		"log.level":               "TEMPLORA_LOG_LEVEL",
		"log.format":              "TEMPLORA_LOG_FORMAT",
		"cors.allowed_origins":    "TEMPLORA_CORS_ALLOWED_ORIGINS",
		"email.provider":          "TEMPLORA_EMAIL_PROVIDER",
		"email.region":            "TEMPLORA_EMAIL_REGION",
		"email.from_address":      "TEMPLORA_EMAIL_FROM_ADDRESS",
		"email.from_name":         "TEMPLORA_EMAIL_FROM_NAME",
		"email.frontend_url":      "TEMPLORA_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TEMPLORA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TEMPLORA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:         v.GetString("s3.region"),
		Endpoint:       v.GetString("s3.endpoint"),
		AccessKey:      v.GetString("s3.access_key"),
		SecretKey:      v.GetString("s3.secret_key"),
		PreviewsBucket: v.GetString("s3.previews_bucket"),
		SourceBucket:   v.GetString("s3.source_bucket"),
		PublicBaseURL:  strings.TrimRight(v.GetString("s3.public_base_url"), "/"),
		PresignExpiry:  v.GetInt64("s3.presign_expiry"),
	}
	cfg.Upload = UploadConfig{
		ChunkSize:       v.GetInt64("upload.chunk_size"),
		SimpleThreshold: v.GetInt64("upload.simple_threshold"),
		MaxFileSize:     v.GetInt64("upload.max_file_size"),
		PartConcurrency: v.GetInt("upload.part_concurrency"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
