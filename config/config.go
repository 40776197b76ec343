package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Platform PlatformConfig
	Roles    RolesConfig
	Flow     FlowConfig
	Export   ExportConfig
	AWS      AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/registration?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT validation settings for gateway-minted service tokens.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// PlatformConfig holds the community-platform gateway settings.
type PlatformConfig struct {
	BaseURL  string
	BotToken string
	GuildID  string
}

// RolesConfig holds the role-ID sets driving eligibility and bulk actions.
type RolesConfig struct {
	AdminRoleIDs        []string
	AdminUserIDs        []string
	ExcludedRoleIDs     []string
	ExistingTeamRoleIDs []string
	NotRenewedRoleID    string
	UnverifiedRoleID    string
}

// FlowConfig holds registration flow settings.
type FlowConfig struct {
	SessionTimeoutSec int // inactivity timeout for a form session
	ConfirmTimeoutSec int // TTL for kick confirmation tokens
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	CSVPath string
}

// AWSConfig holds AWS credentials and the exports bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ExportsBucket        string
	PresignExpireMinutes int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "registration"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		Platform: PlatformConfig{
			BaseURL:  getEnv("PLATFORM_BASE_URL", "http://localhost:9090"),
			BotToken: getEnv("PLATFORM_BOT_TOKEN", ""),
			GuildID:  getEnv("PLATFORM_GUILD_ID", ""),
		},
		Roles: RolesConfig{
			AdminRoleIDs:        splitTrim(getEnv("ADMIN_ROLE_IDS", ""), ","),
			AdminUserIDs:        splitTrim(getEnv("ADMIN_USER_IDS", ""), ","),
			ExcludedRoleIDs:     splitTrim(getEnv("EXCLUDED_ROLE_IDS", ""), ","),
			ExistingTeamRoleIDs: splitTrim(getEnv("EXISTING_TEAM_ROLE_IDS", ""), ","),
			NotRenewedRoleID:    getEnv("NOT_RENEWED_ROLE_ID", ""),
			UnverifiedRoleID:    getEnv("UNVERIFIED_ROLE_ID", ""),
		},
		Flow: FlowConfig{
			SessionTimeoutSec: getEnvInt("SESSION_TIMEOUT_SEC", 300),
			ConfirmTimeoutSec: getEnvInt("CONFIRM_TIMEOUT_SEC", 60),
		},
		Export: ExportConfig{
			CSVPath: getEnv("EXPORT_CSV_PATH", "/tmp/registrations.csv"),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ExportsBucket:        getEnv("AWS_S3_EXPORTS_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
