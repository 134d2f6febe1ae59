package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "not-so-secret-now-is-it?"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// StorageConfig selects where note attachments are uploaded. An empty
// Driver disables uploads.
type StorageConfig struct {
	Driver        string
	BucketName    string
	PublicBaseURL string
	R2            R2Config
	Minio         MinioConfig
}

type Config struct {
	DBDriver     string
	DBURL        string
	Port         string
	JWTSecret    string
	Environment  string
	LogLevel     string
	SessionTTL   time.Duration
	SessionStore string
	RedisURL     string
	PageSize     int
	CorsConfig   cors.Options
	Google       GoogleConfig
	Storage      StorageConfig
}

// IsProduction reports whether ENV=production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the env file (if any) and the process environment.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// A missing env file is fine; the environment may already be set.
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_URL", "notevault.db")
	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("PAGE_SIZE", 5)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback")
	v.SetDefault("R2_REGION", "auto")
	v.AutomaticEnv()

	cfg := Config{
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DBURL:        v.GetString("DB_URL"),
		Port:         v.GetString("PORT"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		Environment:  v.GetString("ENV"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		SessionTTL:   v.GetDuration("SESSION_TTL"),
		SessionStore: strings.ToLower(v.GetString("SESSION_STORE")),
		RedisURL:     v.GetString("REDIS_URL"),
		PageSize:     v.GetInt("PAGE_SIZE"),
		CorsConfig:   CorsConfig(splitList(v.GetString("CORS_ALLOWED_ORIGINS"))),
		Google: GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
			BucketName:    v.GetString("STORAGE_BUCKET"),
			PublicBaseURL: v.GetString("STORAGE_PUBLIC_BASE_URL"),
			R2: R2Config{
				AccountID:       v.GetString("R2_ACCOUNT_ID"),
				AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("R2_SECRET_ACCESS_KEY"),
				Region:          v.GetString("R2_REGION"),
			},
			Minio: MinioConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL must be set")
	}
	if c.JWTSecret == "" || (c.IsProduction() && c.JWTSecret == defaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	switch c.SessionStore {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	switch c.Storage.Driver {
	case "", "r2", "minio":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "" && c.Storage.BucketName == "" {
		return fmt.Errorf("STORAGE_BUCKET must be set when STORAGE_DRIVER=%s", c.Storage.Driver)
	}
	return nil
}

func CorsConfig(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
