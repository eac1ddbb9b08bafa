package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CriterionKind is the closed set of machine-checkable achievement
// criteria. Each kind compares one aggregate user statistic against the
// achievement's threshold.
type CriterionKind string

const (
	CriterionPostCount         CriterionKind = "post_count"
	CriterionCommentCount      CriterionKind = "comment_count"
	CriterionLikeCount         CriterionKind = "like_count"
	CriterionCommunityCount    CriterionKind = "community_count"
	CriterionContributionCount CriterionKind = "contribution_count"
	CriterionTokenBalance      CriterionKind = "token_balance"
)

// UserStats is the aggregate statistics set an achievement criterion is
// evaluated against. Recomputed from the stores on every qualifying action.
type UserStats struct {
	PostCount      int64
	CommentCount   int64
	LikeCount      int64
	CommunityCount int64
	TokenBalance   Amount
}

// ContributionCount is posts plus comments.
func (s UserStats) ContributionCount() int64 {
	return s.PostCount + s.CommentCount
}

type Achievement struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string        `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Category    string        `gorm:"size:50;index" json:"category"`
	Criterion   CriterionKind `gorm:"size:50;not null" json:"criterion"`
	Threshold   int64         `gorm:"not null" json:"threshold"`
	Points      int           `gorm:"not null;default:0" json:"points"`
	XPReward    int           `gorm:"not null;default:0" json:"xp_reward"`
	TokenReward Amount        `gorm:"not null;default:0" json:"token_reward"`
	Icon        string        `gorm:"size:50" json:"icon"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Met reports whether the criterion holds for the given statistics.
// No criterion depends on another achievement being unlocked, so
// evaluation is order independent across the rule set.
func (a *Achievement) Met(stats UserStats) bool {
	switch a.Criterion {
	case CriterionPostCount:
		return stats.PostCount >= a.Threshold
	case CriterionCommentCount:
		return stats.CommentCount >= a.Threshold
	case CriterionLikeCount:
		return stats.LikeCount >= a.Threshold
	case CriterionCommunityCount:
		return stats.CommunityCount >= a.Threshold
	case CriterionContributionCount:
		return stats.ContributionCount() >= a.Threshold
	case CriterionTokenBalance:
		return stats.TokenBalance.Cmp(NewAmount(a.Threshold)) >= 0
	default:
		return false
	}
}

// AchievementUnlock is the "already awarded" guard: the composite unique
// index allows at most one unlock per (user, achievement) pair.
type AchievementUnlock struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	UnlockedAt    time.Time    `gorm:"autoCreateTime" json:"unlocked_at"`
}

func (u *AchievementUnlock) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
