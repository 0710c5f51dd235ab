package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"carvfi/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

type Config struct {
	AppPort    string
	AppVersion string
	GinMode    string

	DatabaseURL string // empty selects the in-memory store

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	AllowedOrigins []string
	Location       *time.Location // calendar-day boundary for check-ins and chat limits

	ChatDailyLimit      int
	APIRateLimit        int
	APIRateWindow       time.Duration
	AuthRateLimit       int
	AuthRateWindow      time.Duration
	LeaderboardCacheTTL time.Duration

	Log logger.Options
}

// Load reads .env, an optional config.yaml and the environment. It exits
// the process when the configuration is unusable.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Read(".")
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// Read builds a Config from config.yaml in configPath (optional) with
// environment variables taking precedence.
func Read(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		AppPort:             v.GetString("app_port"),
		AppVersion:          v.GetString("app_version"),
		GinMode:             v.GetString("gin_mode"),
		DatabaseURL:         v.GetString("database_url"),
		RedisAddr:           v.GetString("redis_addr"),
		RedisPassword:       v.GetString("redis_password"),
		RedisDB:             v.GetInt("redis_db"),
		JWTSecret:           v.GetString("jwt_secret"),
		JWTTTL:              v.GetDuration("jwt_ttl"),
		AllowedOrigins:      splitList(v.GetString("allowed_origins")),
		ChatDailyLimit:      v.GetInt("chat_daily_limit"),
		APIRateLimit:        v.GetInt("api_rate_limit"),
		APIRateWindow:       v.GetDuration("api_rate_window"),
		AuthRateLimit:       v.GetInt("auth_rate_limit"),
		AuthRateWindow:      v.GetDuration("auth_rate_window"),
		LeaderboardCacheTTL: v.GetDuration("leaderboard_cache_ttl"),
		Log: logger.Options{
			Level:      v.GetString("log_level"),
			Format:     v.GetString("log_format"),
			Path:       v.GetString("log_path"),
			MaxSizeMB:  v.GetInt("log_max_size_mb"),
			MaxBackups: v.GetInt("log_max_backups"),
			MaxAgeDays: v.GetInt("log_max_age_days"),
			Compress:   v.GetBool("log_compress"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.ChatDailyLimit <= 0 {
		return nil, fmt.Errorf("CHAT_DAILY_LIMIT must be positive, got %d", cfg.ChatDailyLimit)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_port", "8080")
	v.SetDefault("app_version", "dev")
	v.SetDefault("gin_mode", "release")

	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("timezone", "UTC")

	v.SetDefault("chat_daily_limit", 20)
	v.SetDefault("api_rate_limit", 120)
	v.SetDefault("api_rate_window", "1m")
	v.SetDefault("auth_rate_limit", 10)
	v.SetDefault("auth_rate_window", "1m")
	v.SetDefault("leaderboard_cache_ttl", "30s")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 7)
	v.SetDefault("log_compress", false)
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
