package bootstrap

import (
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.Membership{},
		&model.Post{},
		&model.Comment{},
		&model.Vote{},
		&model.Challenge{},
		&model.UserChallenge{},
		&model.Achievement{},
		&model.AchievementUnlock{},
		&model.TokenTransaction{},
		&model.Notification{},
	)
}

// SeedAchievements installs the achievement catalog. Existing rows are
// left untouched, so redeploys never reset thresholds tuned in production.
func SeedAchievements(db *gorm.DB) error {
	catalog := []model.Achievement{
		{
			Name:        "First Post",
			Description: "Publish your first post",
			Category:    "content",
			Criterion:   model.CriterionPostCount,
			Threshold:   1,
			Points:      10,
			XPReward:    100,
			Icon:        "pencil",
		},
		{
			Name:        "Prolific Writer",
			Description: "Publish 10 posts",
			Category:    "content",
			Criterion:   model.CriterionPostCount,
			Threshold:   10,
			Points:      25,
			XPReward:    250,
			Icon:        "scroll",
		},
		{
			Name:        "Conversationalist",
			Description: "Write 10 comments",
			Category:    "content",
			Criterion:   model.CriterionCommentCount,
			Threshold:   10,
			Points:      15,
			XPReward:    150,
			Icon:        "speech-bubble",
		},
		{
			Name:        "Crowd Favorite",
			Description: "Collect 25 likes across your posts",
			Category:    "social",
			Criterion:   model.CriterionLikeCount,
			Threshold:   25,
			Points:      25,
			XPReward:    200,
			Icon:        "heart",
		},
		{
			Name:        "Community Founder",
			Description: "Create your first community",
			Category:    "community",
			Criterion:   model.CriterionCommunityCount,
			Threshold:   1,
			Points:      30,
			XPReward:    300,
			TokenReward: model.NewAmount(50),
			Icon:        "flag",
		},
		{
			Name:        "Dedicated Contributor",
			Description: "Reach 50 combined posts and comments",
			Category:    "content",
			Criterion:   model.CriterionContributionCount,
			Threshold:   50,
			Points:      50,
			XPReward:    500,
			Icon:        "trophy",
		},
		{
			Name:        "Token Holder",
			Description: "Hold a balance of 1000 tokens",
			Category:    "economy",
			Criterion:   model.CriterionTokenBalance,
			Threshold:   1000,
			Points:      20,
			XPReward:    200,
			Icon:        "coin",
		},
		{
			Name:        "Whale",
			Description: "Hold a balance of 10000 tokens",
			Category:    "economy",
			Criterion:   model.CriterionTokenBalance,
			Threshold:   10000,
			Points:      100,
			XPReward:    1000,
			TokenReward: model.NewAmount(100),
			Icon:        "whale",
		},
	}

	for i := range catalog {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&catalog[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedChallenges installs the starter challenge set, skipping titles that
// already exist.
func SeedChallenges(db *gorm.DB) error {
	starters := []model.Challenge{
		{
			Title:       "Welcome Aboard",
			Description: "Complete your profile and publish an introduction post",
			TokenReward: model.NewAmount(25),
		},
		{
			Title:       "Community Explorer",
			Description: "Join three communities and comment in each",
			TokenReward: model.NewAmount(50),
		},
		{
			Title:       "Curator",
			Description: "Vote on ten posts you found valuable",
			TokenReward: model.NewAmount(30),
		},
	}

	for i := range starters {
		var count int64
		if err := db.Model(&model.Challenge{}).
			Where("title = ?", starters[i].Title).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&starters[i]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
