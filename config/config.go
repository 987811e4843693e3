package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Queue backends
const (
	QueueBackendSQLite = "sqlite"
	QueueBackendRedis  = "redis"
	QueueBackendNATS   = "nats"
	QueueBackendMemory = "memory"
)

// Config holds application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	NATS     NATSConfig
	Queue    QueueConfig
	Storage  StorageConfig
	Sync     SyncConfig
	Auth     AuthConfig
	API      APIConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name        string
	Environment string
	Port        string
	Debug       bool
	LogLevel    string
}

// DatabaseConfig holds the remote Postgres configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxIdle  int
	MaxOpen  int
	MaxLife  time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// SQLiteConfig holds the on-device database location
type SQLiteConfig struct {
	Path string
}

// NATSConfig holds the NATS JetStream key-value configuration
type NATSConfig struct {
	URL    string
	Bucket string
}

// QueueConfig selects the key-value backend for the offline queue
type QueueConfig struct {
	Backend string
	Key     string
}

// StorageConfig holds the remote object storage configuration
type StorageConfig struct {
	BaseURL           string
	PublicURL         string
	ServiceKey        string
	EvidenceBucket    string
	AccidentBucket    string
	CertificateBucket string
	TimeoutSeconds    int
}

// SyncConfig holds sync engine and connectivity probe configuration
type SyncConfig struct {
	OperationTimeout time.Duration
	ProbeURL         string
	ProbeInterval    time.Duration
	ProbeTimeout     time.Duration
	DrainInterval    time.Duration
	StartOnline      bool
}

// AuthConfig holds identity provider token validation settings
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// APIConfig holds API configuration
type APIConfig struct {
	TimeoutSeconds int
	MaxRequestSize int64
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "SiteComply"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Debug:       getEnvBool("APP_DEBUG", true),
			LogLevel:    getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "sitecomply"),
			User:     getEnv("DB_USER", "sitecomply"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxIdle:  getEnvInt("DB_MAX_IDLE", 2),
			MaxOpen:  getEnvInt("DB_MAX_OPEN", 5),
			MaxLife:  getEnvDuration("DB_MAX_LIFE", time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 4),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "sitecomply.db"),
		},
		NATS: NATSConfig{
			URL:    getEnv("NATS_URL", "nats://localhost:4222"),
			Bucket: getEnv("NATS_KV_BUCKET", "sitecomply"),
		},
		Queue: QueueConfig{
			Backend: strings.ToLower(getEnv("QUEUE_BACKEND", QueueBackendSQLite)),
			Key:     getEnv("QUEUE_KEY", "sitecomply:offline_queue"),
		},
		Storage: StorageConfig{
			BaseURL:           getEnv("STORAGE_BASE_URL", "http://localhost:54321/storage/v1"),
			PublicURL:         getEnv("STORAGE_PUBLIC_URL", ""),
			ServiceKey:        getEnv("STORAGE_SERVICE_KEY", ""),
			EvidenceBucket:    getEnv("STORAGE_EVIDENCE_BUCKET", "evidence"),
			AccidentBucket:    getEnv("STORAGE_ACCIDENT_BUCKET", "accident-photos"),
			CertificateBucket: getEnv("STORAGE_CERTIFICATE_BUCKET", "certificates"),
			TimeoutSeconds:    getEnvInt("STORAGE_TIMEOUT", 30),
		},
		Sync: SyncConfig{
			OperationTimeout: getEnvDuration("SYNC_OPERATION_TIMEOUT", 30*time.Second),
			ProbeURL:         getEnv("SYNC_PROBE_URL", ""),
			ProbeInterval:    getEnvDuration("SYNC_PROBE_INTERVAL", 15*time.Second),
			ProbeTimeout:     getEnvDuration("SYNC_PROBE_TIMEOUT", 3*time.Second),
			DrainInterval:    getEnvDuration("SYNC_DRAIN_INTERVAL", 0),
			StartOnline:      getEnvBool("SYNC_START_ONLINE", false),
		},
		Auth: AuthConfig{
			Secret:   getEnv("AUTH_SECRET", ""),
			Issuer:   getEnv("AUTH_ISSUER", ""),
			Audience: getEnv("AUTH_AUDIENCE", "authenticated"),
			Leeway:   getEnvDuration("AUTH_LEEWAY", 30*time.Second),
		},
		API: APIConfig{
			TimeoutSeconds: getEnvInt("API_TIMEOUT", 60),
			MaxRequestSize: getEnvInt64("API_MAX_REQUEST_SIZE", 10485760), // 10MB, certificates are inline
			AllowedOrigins: getEnvSlice("API_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	return config, nil
}

// GetDSN returns database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// GetRedisAddr returns Redis connection address
func (r *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// GetPublicURL returns the public object base, defaulting to BaseURL
func (s *StorageConfig) GetPublicURL() string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	return s.BaseURL
}

// IsDevelopment returns true if environment is development
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if environment is production
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// Validate validates configuration
func (c *Config) Validate() error {
	switch c.Queue.Backend {
	case QueueBackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required for the sqlite queue backend")
		}
	case QueueBackendRedis, QueueBackendNATS, QueueBackendMemory:
	default:
		return fmt.Errorf("unknown queue backend %q", c.Queue.Backend)
	}
	if c.Queue.Key == "" {
		return fmt.Errorf("queue key is required")
	}
	if c.Sync.OperationTimeout <= 0 {
		return fmt.Errorf("sync operation timeout must be positive")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	if c.Storage.BaseURL == "" {
		return fmt.Errorf("storage base url is required")
	}
	if c.App.IsProduction() && c.Auth.Secret == "" {
		return fmt.Errorf("auth secret must be set in production")
	}

	return nil
}

// Print prints configuration (excluding sensitive data)
func (c *Config) Print() {
	fmt.Printf("=== Configuration ===\n")
	fmt.Printf("App Name: %s\n", c.App.Name)
	fmt.Printf("Environment: %s\n", c.App.Environment)
	fmt.Printf("Port: %s\n", c.App.Port)
	fmt.Printf("Database: %s:%s/%s\n", c.Database.Host, c.Database.Port, c.Database.Name)
	fmt.Printf("Queue: %s (key %s)\n", c.Queue.Backend, c.Queue.Key)
	fmt.Printf("Storage: %s\n", c.Storage.BaseURL)
	fmt.Printf("Sync Operation Timeout: %v\n", c.Sync.OperationTimeout)
	fmt.Printf("====================\n")
}
