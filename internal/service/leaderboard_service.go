package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const leaderboardCacheTTL = time.Minute

type LeaderboardService interface {
	// GetLeaderboard ranks accounts by achievement points, descending.
	// Ranks are 1-based and the result is briefly cached.
	GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	GetUserProgress(ctx context.Context, address string) (*dto.UserProgressResponse, error)
}

type leaderboardService struct {
	users        repository.UserRepository
	achievements repository.AchievementRepository
	rdb          *redis.Client
}

func NewLeaderboardService(users repository.UserRepository, achievements repository.AchievementRepository, rdb *redis.Client) LeaderboardService {
	return &leaderboardService{
		users:        users,
		achievements: achievements,
		rdb:          rdb,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("leaderboard:top:%d", limit)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var entries []dto.LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	users, err := s.users.TopByAchievementPoints(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	unlockedByUser, err := s.achievements.ListUnlockedBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(users))
	for i := range users {
		u := &users[i]
		names := []string{}
		for _, a := range unlockedByUser[u.ID] {
			names = append(names, a.Name)
		}
		entries = append(entries, dto.LeaderboardEntry{
			Rank:              i + 1,
			Address:           u.Address,
			LensHandle:        u.LensHandle,
			AchievementPoints: u.AchievementPoints,
			TokenBalance:      u.TokenBalance.String(),
			Level:             u.Level,
			Achievements:      names,
		})
	}

	if s.rdb != nil {
		if encoded, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, encoded, leaderboardCacheTTL).Err(); err != nil {
				logger.Sugar.Debugw("leaderboard cache write failed", "error", err)
			}
		}
	}
	return entries, nil
}

func (s *leaderboardService) GetUserProgress(ctx context.Context, address string) (*dto.UserProgressResponse, error) {
	user, err := s.users.FindByAddress(ctx, strings.ToLower(address))
	if err != nil {
		return nil, err
	}

	all, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.achievements.ListUnlocked(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	unlockedSet := make(map[uuid.UUID]bool, len(unlocked))
	for _, a := range unlocked {
		unlockedSet[a.ID] = true
	}

	progress := make([]dto.AchievementProgress, 0, len(all))
	for _, a := range all {
		progress = append(progress, dto.AchievementProgress{
			ID:          a.ID.String(),
			Name:        a.Name,
			Description: a.Description,
			Category:    a.Category,
			Points:      a.Points,
			XPReward:    a.XPReward,
			TokenReward: a.TokenReward.String(),
			Icon:        a.Icon,
			IsCompleted: unlockedSet[a.ID],
		})
	}

	return &dto.UserProgressResponse{
		Level:                 user.Level,
		XP:                    user.XP,
		NextLevelXP:           user.NextLevelXP(),
		AchievementPoints:     user.AchievementPoints,
		TotalAchievements:     int64(len(all)),
		CompletedAchievements: int64(len(unlocked)),
		Achievements:          progress,
	}, nil
}
