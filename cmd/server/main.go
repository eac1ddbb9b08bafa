package main

import (
	"context"
	"log"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/internal/bootstrap"
	"github.com/Hoblayerta/LENSNOMICS/internal/config"
	"github.com/Hoblayerta/LENSNOMICS/internal/server"
	"github.com/Hoblayerta/LENSNOMICS/pkg/database"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logger.Init(logger.Options{Level: cfg.LogLevel, Path: cfg.LogPath}); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Log.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Connect()

	if err := bootstrap.Migrate(db); err != nil {
		logger.Sugar.Fatalw("migration failed", "error", err)
	}
	if err := bootstrap.SeedAchievements(db); err != nil {
		logger.Sugar.Fatalw("achievement seed failed", "error", err)
	}
	if err := bootstrap.SeedChallenges(db); err != nil {
		logger.Sugar.Fatalw("challenge seed failed", "error", err)
	}

	redisClient := connectRedis(cfg)

	srv := server.NewServer(cfg, db, redisClient)

	logger.Sugar.Infow("server starting", "port", cfg.Port, "env", cfg.AppEnv, "chain", cfg.ChainEnabled)
	if err := srv.Run(":" + cfg.Port); err != nil {
		logger.Sugar.Fatalw("server exited", "error", err)
	}
}

// connectRedis returns nil when Redis is unreachable; nonce auth and the
// leaderboard cache degrade but the server still comes up.
func connectRedis(cfg *config.Config) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.RedisURL}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Sugar.Warnw("redis unavailable", "addr", cfg.RedisURL, "error", err)
		return nil
	}
	return client
}
