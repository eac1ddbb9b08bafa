package service

import (
	"context"
	"fmt"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/google/uuid"
)

// AchievementService is the progression engine. Evaluate recomputes the
// user's aggregate statistics and unlocks every achievement whose criterion
// now holds; each unlock is awarded exactly once regardless of how many
// concurrent evaluations race.
type AchievementService interface {
	Evaluate(ctx context.Context, userID uuid.UUID) ([]model.Achievement, error)
	// EvaluateBestEffort runs Evaluate inline, logging failures.
	// Contribution writes call this before responding so unlocks and
	// level ups land within the triggering request, while a progression
	// failure never fails the content action itself.
	EvaluateBestEffort(ctx context.Context, userID uuid.UUID)
}

type achievementService struct {
	achievements  repository.AchievementRepository
	users         repository.UserRepository
	posts         repository.PostRepository
	rewards       RewardService
	notifications NotificationService
}

func NewAchievementService(
	achievements repository.AchievementRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
	rewards RewardService,
	notifications NotificationService,
) AchievementService {
	return &achievementService{
		achievements:  achievements,
		users:         users,
		posts:         posts,
		rewards:       rewards,
		notifications: notifications,
	}
}

func (s *achievementService) EvaluateBestEffort(ctx context.Context, userID uuid.UUID) {
	if _, err := s.Evaluate(ctx, userID); err != nil {
		logger.Sugar.Errorw("achievement evaluation failed", "user_id", userID, "error", err)
	}
}

func (s *achievementService) Evaluate(ctx context.Context, userID uuid.UUID) ([]model.Achievement, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.collectStats(ctx, user)
	if err != nil {
		return nil, err
	}

	rules, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var unlocked []model.Achievement
	for _, rule := range rules {
		if !rule.Met(stats) {
			continue
		}
		created, err := s.achievements.Unlock(ctx, user.ID, rule.ID)
		if err != nil {
			return unlocked, err
		}
		if !created {
			continue
		}
		if err := s.award(ctx, user, rule); err != nil {
			// The unlock stands; only its side rewards failed.
			logger.Sugar.Errorw("achievement award failed",
				"user_id", user.ID, "achievement", rule.Name, "error", err)
		}
		unlocked = append(unlocked, rule)
	}
	return unlocked, nil
}

func (s *achievementService) collectStats(ctx context.Context, user *model.User) (model.UserStats, error) {
	var stats model.UserStats
	var err error

	if stats.PostCount, err = s.posts.CountPostsByAuthor(ctx, user.ID); err != nil {
		return stats, err
	}
	if stats.CommentCount, err = s.posts.CountCommentsByAuthor(ctx, user.ID); err != nil {
		return stats, err
	}
	if stats.LikeCount, err = s.posts.CountLikesReceived(ctx, user.ID); err != nil {
		return stats, err
	}
	if stats.CommunityCount, err = s.users.CountCreatedCommunities(ctx, user.ID); err != nil {
		return stats, err
	}
	stats.TokenBalance = user.TokenBalance
	return stats, nil
}

// award applies the unlock's side effects: achievement points, XP with
// level ups, the optional token reward, and notifications.
func (s *achievementService) award(ctx context.Context, user *model.User, rule model.Achievement) error {
	if rule.Points > 0 {
		if err := s.users.AddAchievementPoints(ctx, user.ID, rule.Points); err != nil {
			return err
		}
		user.AchievementPoints += rule.Points
	}

	if rule.XPReward > 0 {
		if err := s.grantXP(ctx, user, rule.XPReward); err != nil {
			return err
		}
	}

	if !rule.TokenReward.IsZero() {
		_, err := s.rewards.Apply(ctx, RewardGrant{
			Recipient: user,
			Amount:    rule.TokenReward,
			TxType:    model.TxTypeReward,
			Reason:    fmt.Sprintf("Achievement reward: %s", rule.Name),
		})
		if err != nil {
			return err
		}
	}

	notifyBestEffort(ctx, s.notifications, user.ID, rule.ID, model.NotifAchievementUnlocked,
		fmt.Sprintf("Achievement unlocked: %s", rule.Name))
	return nil
}

// grantXP adds experience through the locked repository increment and pays
// the flat level bonus per level gained.
func (s *achievementService) grantXP(ctx context.Context, user *model.User, xp int) error {
	levelsGained, newLevel, err := s.users.GrantXP(ctx, user.ID, xp)
	if err != nil {
		return err
	}
	user.Level = newLevel

	for level := newLevel - levelsGained + 1; level <= newLevel; level++ {
		_, err := s.rewards.Apply(ctx, RewardGrant{
			Recipient: user,
			Amount:    LevelBonus,
			TxType:    model.TxTypeLevelBonus,
			Reason:    fmt.Sprintf("Level up bonus: level %d", level),
		})
		if err != nil {
			logger.Sugar.Errorw("level bonus reward failed",
				"user_id", user.ID, "level", level, "error", err)
		}
	}
	if levelsGained > 0 {
		notifyBestEffort(ctx, s.notifications, user.ID, user.ID, model.NotifLevelUp,
			fmt.Sprintf("You reached level %d", newLevel))
	}
	return nil
}
