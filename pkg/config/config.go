package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported submission log backends.
const (
	LogBackendCSV      = "csv"
	LogBackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Intake   IntakeConfig
	Admin    AdminConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// IntakeConfig governs submission validation and the weekly quota.
type IntakeConfig struct {
	WeeklyLimit    int
	MaxVideoSizeMB float64
}

// AdminConfig holds the shared admin secret and session settings.
type AdminConfig struct {
	Password      string
	SessionSecret string
	SessionTTL    time.Duration
}

// StorageConfig locates the content store and the submission log.
type StorageConfig struct {
	VideosDir       string
	LogBackend      string
	LogPath         string
	SignedURLSecret string
	SignedURLTTL    time.Duration
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	weeklyLimit := v.GetInt("QUOTA_WEEKLY_LIMIT")
	if weeklyLimit <= 0 {
		weeklyLimit = 10
	}
	maxSize := v.GetFloat64("MAX_VIDEO_SIZE_MB")
	if maxSize <= 0 {
		maxSize = 200
	}
	cfg.Intake = IntakeConfig{
		WeeklyLimit:    weeklyLimit,
		MaxVideoSizeMB: maxSize,
	}

	cfg.Admin = AdminConfig{
		Password:      v.GetString("ADMIN_PASSWORD"),
		SessionSecret: v.GetString("ADMIN_SESSION_SECRET"),
		SessionTTL:    parseDuration(v.GetString("ADMIN_SESSION_TTL"), 8*time.Hour),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("LOG_BACKEND")))
	if backend != LogBackendPostgres {
		backend = LogBackendCSV
	}
	cfg.Storage = StorageConfig{
		VideosDir:       v.GetString("VIDEOS_DIR"),
		LogBackend:      backend,
		LogPath:         v.GetString("SUBMISSIONS_LOG_PATH"),
		SignedURLSecret: v.GetString("DOWNLOAD_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("DOWNLOAD_URL_TTL"), 30*time.Minute),
	}

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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("QUOTA_WEEKLY_LIMIT", 10)
	v.SetDefault("MAX_VIDEO_SIZE_MB", 200)

	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_SESSION_SECRET", "dev_admin_session_secret")
	v.SetDefault("ADMIN_SESSION_TTL", "8h")

	v.SetDefault("VIDEOS_DIR", "./videos")
	v.SetDefault("LOG_BACKEND", LogBackendCSV)
	v.SetDefault("SUBMISSIONS_LOG_PATH", "./submissions_tracking.csv")
	v.SetDefault("DOWNLOAD_URL_SECRET", "dev_download_secret")
	v.SetDefault("DOWNLOAD_URL_TTL", "30m")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "kilter_intake")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
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
