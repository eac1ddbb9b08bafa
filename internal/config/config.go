package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	MeiliSearchHost string
	MeiliMasterKey  string

	// Chain mode: when disabled, balances live only in the database
	// ledger and token calls are served by the off-chain stand-in.
	ChainEnabled        bool
	EthRPCURL           string
	EthChainID          int64
	EthOperatorKey      string
	TokenFactoryAddress string
	ChainCallTimeout    time.Duration

	LensAPIURL string

	LogLevel string
	LogPath  string

	// The reference reward economy is deliberately unthrottled; the
	// limiter is an explicit policy switch, off by default.
	RateLimitEnabled bool
	RateLimitGlobal  time.Duration
	RateLimitPost    time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		ChainEnabled:        getEnv("CHAIN_ENABLED", "false") == "true",
		EthRPCURL:           getEnv("ETH_RPC_URL", "http://localhost:8545"),
		EthOperatorKey:      os.Getenv("ETH_OPERATOR_KEY"),
		TokenFactoryAddress: os.Getenv("TOKEN_FACTORY_ADDRESS"),

		LensAPIURL: os.Getenv("LENS_API_URL"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  os.Getenv("LOG_PATH"),

		RateLimitEnabled: getEnv("RATE_LIMIT_ENABLED", "false") == "true",
	}

	var err error
	cfg.EthChainID, err = strconv.ParseInt(getEnv("ETH_CHAIN_ID", "137"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ETH_CHAIN_ID: %w", err)
	}
	cfg.ChainCallTimeout, err = time.ParseDuration(getEnv("CHAIN_CALL_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHAIN_CALL_TIMEOUT: %w", err)
	}
	cfg.RateLimitGlobal, err = time.ParseDuration(getEnv("RATE_LIMIT_GLOBAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GLOBAL: %w", err)
	}
	cfg.RateLimitPost, err = time.ParseDuration(getEnv("RATE_LIMIT_POST", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_POST: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
