package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Session      SessionConfig
	Email        EmailConfig
	Redis        RedisConfig
	Verification VerificationConfig
	Log          LogConfig
	RateLimit    RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

type SessionConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type EmailConfig struct {
	Provider       string // sendgrid or ses
	SendGridAPIKey string
	SESRegion      string
	SESAccessKeyID string
	SESSecretKey   string
	FromEmail      string
	FromName       string
	CompanyName    string
	BaseURL        string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

type VerificationConfig struct {
	TokenTTL  time.Duration
	KeyPrefix string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstMultiplier   float64
	Window            time.Duration
	KeyPrefix         string
}

const (
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	req := &required{}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "15443"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Database: loadDatabaseConfig(),
		Session: SessionConfig{
			Secret:   req.get("SESSION_SECRET"),
			TokenTTL: getDurationEnv("SESSION_TTL", 14*24*time.Hour),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderSendGrid)),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			SESRegion:      getEnv("SES_REGION", "us-west-2"),
			SESAccessKeyID: getEnv("MAIL_ACCESS_KEY_ID", ""),
			SESSecretKey:   getEnv("MAIL_SECRET_ACCESS_KEY", ""),
			FromEmail:      getEnv("FROM_EMAIL", "support@npmjs.com"),
			FromName:       getEnv("FROM_NAME", "npm"),
			CompanyName:    getEnv("COMPANY_NAME", "npm"),
			BaseURL:        strings.TrimRight(req.get("BASE_URL"), "/"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "127.0.0.1"),
			Port:         getEnv("REDIS_PORT", "16379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Verification: VerificationConfig{
			TokenTTL:  getDurationEnv("VERIFICATION_TOKEN_TTL", 7*24*time.Hour),
			KeyPrefix: getEnv("VERIFICATION_KEY_PREFIX", "email_confirm"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolEnv("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getIntEnv("RATE_LIMIT_RPM", 30),
			BurstMultiplier:   getFloatEnv("RATE_LIMIT_BURST", 2.0),
			Window:            getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			KeyPrefix:         getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit:client"),
		},
	}

	switch cfg.Email.Provider {
	case EmailProviderSendGrid:
		cfg.Email.SendGridAPIKey = req.get("SENDGRID_API_KEY")
	case EmailProviderSES:
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER %q", cfg.Email.Provider)
	}

	if len(req.missing) > 0 {
		return nil, fmt.Errorf("required environment variables not set: %s", strings.Join(req.missing, ", "))
	}

	if cfg.Verification.TokenTTL <= 0 {
		return nil, fmt.Errorf("VERIFICATION_TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for commands that do not serve traffic.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()
	cfg := loadDatabaseConfig()
	return &cfg, nil
}

func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnv("DB_PORT", "5432"),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "newww"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "./migrations"),
	}

	cfg.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DSN = dsn
	}
	return cfg
}

// required records which mandatory variables are unset so Load can report them together.
type required struct {
	missing []string
}

func (r *required) get(key string) string {
	value := os.Getenv(key)
	if value == "" {
		r.missing = append(r.missing, key)
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
