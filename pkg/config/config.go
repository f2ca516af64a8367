package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Storage   StorageConfig
	Feed      FeedConfig
	Dashboard DashboardConfig
	Reports   ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects and tunes the media object-storage backend.
type StorageConfig struct {
	Backend          string // "local" or "s3"
	Bucket           string
	BaseDir          string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
}

// FeedConfig governs the daily-updates feed.
type FeedConfig struct {
	PageSize        int
	PreviewCacheTTL time.Duration
	WarmWorkers     int
}

// DashboardConfig governs dashboard summary caching.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// ReportsConfig toggles attendance report exports.
type ReportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUploadSize := v.GetInt64("STORAGE_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Backend:          strings.ToLower(v.GetString("STORAGE_BACKEND")),
		Bucket:           v.GetString("STORAGE_BUCKET"),
		BaseDir:          v.GetString("STORAGE_BASE_DIR"),
		SignedURLSecret:  v.GetString("STORAGE_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("STORAGE_SIGNED_URL_TTL"), time.Hour),
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("STORAGE_ALLOWED_MIME_TYPES")),
		S3Endpoint:       v.GetString("STORAGE_S3_ENDPOINT"),
		S3Region:         v.GetString("STORAGE_S3_REGION"),
		S3AccessKey:      v.GetString("STORAGE_S3_ACCESS_KEY"),
		S3SecretKey:      v.GetString("STORAGE_S3_SECRET_KEY"),
		S3UseSSL:         v.GetBool("STORAGE_S3_USE_SSL"),
	}

	cfg.Feed = FeedConfig{
		PageSize:        v.GetInt("FEED_PAGE_SIZE"),
		PreviewCacheTTL: parseDuration(v.GetString("FEED_PREVIEW_CACHE_TTL"), 55*time.Minute),
		WarmWorkers:     v.GetInt("FEED_WARM_WORKERS"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		Enabled: v.GetBool("ENABLE_REPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "abogida")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("STORAGE_BUCKET", "school-media")
	v.SetDefault("STORAGE_BASE_DIR", "./media")
	v.SetDefault("STORAGE_SIGNED_URL_SECRET", "dev_media_secret")
	v.SetDefault("STORAGE_SIGNED_URL_TTL", "1h")
	v.SetDefault("STORAGE_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("STORAGE_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif,application/pdf")
	v.SetDefault("STORAGE_S3_ENDPOINT", "")
	v.SetDefault("STORAGE_S3_REGION", "us-east-1")
	v.SetDefault("STORAGE_S3_ACCESS_KEY", "")
	v.SetDefault("STORAGE_S3_SECRET_KEY", "")
	v.SetDefault("STORAGE_S3_USE_SSL", true)

	v.SetDefault("FEED_PAGE_SIZE", 10)
	v.SetDefault("FEED_PREVIEW_CACHE_TTL", "55m")
	v.SetDefault("FEED_WARM_WORKERS", 1)

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("ENABLE_REPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
