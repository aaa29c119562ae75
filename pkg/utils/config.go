package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Pricing   PricingConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxConns        int32
	ConnectAttempts uint
}

// RedisConfig - Addr kosong berarti cache kalender dimatikan
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	CalendarTTL time.Duration
}

type SessionConfig struct {
	ExpiryHours int
}

type PricingConfig struct {
	ServiceFeeRate   float64
	WeeklyThreshold  int
	MonthlyThreshold int
}

type RateLimitConfig struct {
	MessagesPerSecond float64
	MessageBurst      int
	// IdleTTL drops a caller's bucket after this long without requests.
	IdleTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "stay-concierge")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_CONNECT_ATTEMPTS", 5)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_CALENDAR_TTL", "10m")
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("SERVICE_FEE_RATE", 0.10)
	viper.SetDefault("WEEKLY_DISCOUNT_NIGHTS", 7)
	viper.SetDefault("MONTHLY_DISCOUNT_NIGHTS", 30)
	viper.SetDefault("MESSAGE_RATE_PER_SECOND", 1.0)
	viper.SetDefault("MESSAGE_RATE_BURST", 5)
	viper.SetDefault("MESSAGE_RATE_IDLE_TTL", "10m")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// .env opsional, environment tetap dibaca
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Port:            viper.GetString("PORT"),
			Debug:           viper.GetBool("DEBUG"),
			LogPath:         viper.GetString("LOG_PATH"),
			ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			Name:            viper.GetString("DB_NAME"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASS"),
			MaxConns:        viper.GetInt32("DB_MAX_CONNS"),
			ConnectAttempts: viper.GetUint("DB_CONNECT_ATTEMPTS"),
		},
		Redis: RedisConfig{
			Addr:        viper.GetString("REDIS_ADDR"),
			Password:    viper.GetString("REDIS_PASSWORD"),
			DB:          viper.GetInt("REDIS_DB"),
			CalendarTTL: viper.GetDuration("REDIS_CALENDAR_TTL"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Pricing: PricingConfig{
			ServiceFeeRate:   viper.GetFloat64("SERVICE_FEE_RATE"),
			WeeklyThreshold:  viper.GetInt("WEEKLY_DISCOUNT_NIGHTS"),
			MonthlyThreshold: viper.GetInt("MONTHLY_DISCOUNT_NIGHTS"),
		},
		RateLimit: RateLimitConfig{
			MessagesPerSecond: viper.GetFloat64("MESSAGE_RATE_PER_SECOND"),
			MessageBurst:      viper.GetInt("MESSAGE_RATE_BURST"),
			IdleTTL:           viper.GetDuration("MESSAGE_RATE_IDLE_TTL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
