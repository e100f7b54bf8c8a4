package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"clan-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	PubgAPIKey   string
	PubgBaseURL  string
	ClanID       string
	DBPath       string
	ServerPort   string
	LogLevel     string
	SyncTime     string
	RunOnce      bool
	RedisURL     string
	APIRateLimit float64
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		PubgAPIKey:  getEnv("PUBG_API_KEY", ""),
		PubgBaseURL: strings.TrimRight(getEnv("PUBG_BASE_URL", "https://api.pubg.com/shards/steam"), "/"),
		ClanID:      getEnv("PUBG_CLAN_ID", ""),
		DBPath:      getEnv("DB_PATH", "clan.db"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SyncTime:    getEnv("SYNC_TIME", constants.DefaultSyncTime),
		RunOnce:     strings.EqualFold(getEnv("RUN_ONCE", "false"), "true"),
		RedisURL:    getEnv("REDIS_URL", ""),
	}

	rateLimit, err := strconv.ParseFloat(getEnv("API_RATE_LIMIT", "10"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT must be a positive number")
	}
	cfg.APIRateLimit = rateLimit

	if cfg.PubgAPIKey == "" {
		return nil, fmt.Errorf("PUBG_API_KEY is required")
	}

	logger.Info().
		Str("pubg_base_url", cfg.PubgBaseURL).
		Str("clan_id", cfg.ClanID).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("sync_time", cfg.SyncTime).
		Bool("run_once", cfg.RunOnce).
		Bool("redis_lock", cfg.RedisURL != "").
		Float64("api_rate_limit", cfg.APIRateLimit).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
