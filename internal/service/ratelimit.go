package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/internal/config"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ActionCreatePost    = "create_post"
	ActionCreateComment = "create_comment"
	ActionCastVote      = "cast_vote"
)

// RateLimiter throttles write actions per user via Redis SETNX locks.
// The reward economy is intentionally unthrottled by default; the limiter
// only engages when enabled in configuration.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
	global  time.Duration
	post    time.Duration
}

func NewRateLimiter(rdb *redis.Client, cfg *config.Config) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		enabled: cfg.RateLimitEnabled,
		global:  cfg.RateLimitGlobal,
		post:    cfg.RateLimitPost,
	}
}

// Allow reserves the action slot for the user. It returns
// ErrRateLimitExceeded while a previous reservation is still live.
func (l *RateLimiter) Allow(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || !l.enabled || l.rdb == nil {
		return nil
	}

	window := l.global
	if action == ActionCreatePost {
		window = l.post
	}

	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
	wasSet, err := l.rdb.SetNX(ctx, key, "locked", window).Result()
	if err != nil {
		// Redis being down must not block writes.
		return nil
	}
	if !wasSet {
		return apperror.ErrRateLimitExceeded
	}
	return nil
}

// Clear releases the reservation, used when the action itself failed.
func (l *RateLimiter) Clear(ctx context.Context, userID uuid.UUID, action string) {
	if l == nil || !l.enabled || l.rdb == nil {
		return
	}
	key := fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
	l.rdb.Del(ctx, key)
}
