package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Telegram configuration
	BotToken  string
	ChannelID string
	AdminIDs  []int64

	// Callback trust configuration
	AllowedIPs      []string
	CallbackSecret  string
	VerifySignature bool

	// Brevo operator alert configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	AlertEmail     string

	SettingCacheMinutes int
	ServiceName         string
}

// Default provider origins; override with CALLBACK_ALLOWED_IPS.
const defaultAllowedIPs = "202.155.132.37,2001:df7:5300:9::122"

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:                getEnv("PORT", "37761"),
		Mode:                getEnv("GIN_MODE", "debug"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		BotToken:            getEnv("BOT_TOKEN", ""),
		ChannelID:           getEnv("CHANNEL_ID", ""),
		AdminIDs:            getEnvInt64List("ADMIN_IDS"),
		AllowedIPs:          getEnvList("CALLBACK_ALLOWED_IPS", defaultAllowedIPs),
		CallbackSecret:      getEnv("CALLBACK_SECRET", ""),
		VerifySignature:     getEnvBool("CALLBACK_VERIFY_SIGNATURE", true),
		BrevoAPIKey:         getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:      getEnv("BREVO_FROM_EMAIL", ""),
		AlertEmail:          getEnv("ALERT_EMAIL", ""),
		SettingCacheMinutes: getEnvInt("SETTING_CACHE_MINUTES", 5),
		ServiceName:         getEnv("SERVICE_NAME", "vmp-callback"),
	}

	return nil
}

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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvInt64List(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
