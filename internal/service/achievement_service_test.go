package service

import (
	"context"
	"testing"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type achievementFixture struct {
	users        *fakeUserRepo
	posts        *fakePostRepo
	achievements *fakeAchievementRepo
	ledger       *fakeLedgerRepo
	svc          AchievementService
}

func newAchievementFixture() *achievementFixture {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	achievements := newFakeAchievementRepo()
	ledger := newFakeLedgerRepo(users)
	rewards := NewRewardService(ledger, chain.NewOffchain(), nil)
	return &achievementFixture{
		users:        users,
		posts:        posts,
		achievements: achievements,
		ledger:       ledger,
		svc:          NewAchievementService(achievements, users, posts, rewards, nil),
	}
}

func TestEvaluate_UnlocksOnlyMetCriteria(t *testing.T) {
	fx := newAchievementFixture()
	user := fx.users.addUser("0xuser", 0)

	fx.achievements.addRule(model.Achievement{
		Name: "First Post", Criterion: model.CriterionPostCount, Threshold: 1, Points: 10,
	})
	fx.achievements.addRule(model.Achievement{
		Name: "Prolific Writer", Criterion: model.CriterionPostCount, Threshold: 10, Points: 25,
	})

	require.NoError(t, fx.posts.CreatePost(context.Background(), &model.Post{AuthorID: user.ID, Content: "one"}))

	unlocked, err := fx.svc.Evaluate(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "First Post", unlocked[0].Name)
	assert.Equal(t, 10, user.AchievementPoints)
}

func TestEvaluate_NeverUnlocksTwice(t *testing.T) {
	fx := newAchievementFixture()
	user := fx.users.addUser("0xuser", 0)

	fx.achievements.addRule(model.Achievement{
		Name: "First Post", Criterion: model.CriterionPostCount, Threshold: 1, Points: 10,
	})
	require.NoError(t, fx.posts.CreatePost(context.Background(), &model.Post{AuthorID: user.ID, Content: "one"}))

	unlocked, err := fx.svc.Evaluate(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)

	unlocked, err = fx.svc.Evaluate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, 10, user.AchievementPoints)
}

func TestEvaluate_XPRewardLevelsUpWithBonus(t *testing.T) {
	fx := newAchievementFixture()
	user := fx.users.addUser("0xuser", 0)

	// 1200 XP crosses the 1000 XP threshold of level 1.
	fx.achievements.addRule(model.Achievement{
		Name: "Big Milestone", Criterion: model.CriterionPostCount, Threshold: 1, XPReward: 1200,
	})
	require.NoError(t, fx.posts.CreatePost(context.Background(), &model.Post{AuthorID: user.ID, Content: "one"}))

	_, err := fx.svc.Evaluate(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, user.Level)
	assert.Equal(t, 200, user.XP)
	// The level bonus landed in the ledger.
	entries := fx.ledger.entriesOfType(model.TxTypeLevelBonus)
	require.Len(t, entries, 1)
	assert.Equal(t, LevelBonus.String(), entries[0].Amount.String())
	assert.Equal(t, LevelBonus.String(), user.TokenBalance.String())
}

func TestEvaluate_TokenRewardCreditsBalance(t *testing.T) {
	fx := newAchievementFixture()
	user := fx.users.addUser("0xuser", 0)

	fx.achievements.addRule(model.Achievement{
		Name:        "Community Founder",
		Criterion:   model.CriterionCommunityCount,
		Threshold:   1,
		Points:      30,
		TokenReward: model.NewAmount(50),
	})
	fx.users.mu.Lock()
	fx.users.createdCommunities[user.ID] = 1
	fx.users.mu.Unlock()

	unlocked, err := fx.svc.Evaluate(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "50", user.TokenBalance.String())
}

func TestEvaluate_TokenBalanceCriterion(t *testing.T) {
	fx := newAchievementFixture()
	rich := fx.users.addUser("0xrich", 1500)
	poor := fx.users.addUser("0xpoor", 10)

	fx.achievements.addRule(model.Achievement{
		Name: "Token Holder", Criterion: model.CriterionTokenBalance, Threshold: 1000, Points: 20,
	})

	unlocked, err := fx.svc.Evaluate(context.Background(), rich.ID)
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)

	unlocked, err = fx.svc.Evaluate(context.Background(), poor.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}
