package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Hoblayerta/LENSNOMICS/internal/config"
	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/Hoblayerta/LENSNOMICS/pkg/chain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseID(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(raw)
	require.NoError(t, err)
	return id
}

type postFixture struct {
	users       *fakeUserRepo
	posts       *fakePostRepo
	communities *fakeCommunityRepo
	ledger      *fakeLedgerRepo
	svc         PostService
}

func newPostFixture() *postFixture {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	communities := newFakeCommunityRepo(users)
	ledger := newFakeLedgerRepo(users)
	rewards := NewRewardService(ledger, chain.NewOffchain(), nil)
	limiter := NewRateLimiter(nil, &config.Config{})

	svc := NewPostService(posts, users, communities, ledger, rewards, stubAchievements{}, stubSearch{}, limiter)
	return &postFixture{
		users:       users,
		posts:       posts,
		communities: communities,
		ledger:      ledger,
		svc:         svc,
	}
}

func TestCreatePost_RewardsAuthor(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 1000)

	resp, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{
		Content: "hello world",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.RewardError)
	assert.Equal(t, "hello world", resp.Post.Content)

	assert.Equal(t, "1001", author.TokenBalance.String())
	require.Len(t, fx.ledger.entriesOfType(model.TxTypeReward), 1)
}

func TestCreatePost_RewardFailureKeepsContent(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	communities := newFakeCommunityRepo(users)
	ledger := newFakeLedgerRepo(users)
	rewards := NewRewardService(ledger, failingTokens{}, nil)
	limiter := NewRateLimiter(nil, &config.Config{})
	svc := NewPostService(posts, users, communities, ledger, rewards, stubAchievements{}, stubSearch{}, limiter)

	author := users.addUser("0xauthor", 1000)

	resp, err := svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{
		Content: "survives reward failure",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RewardError)

	// The post exists, the balance did not move.
	n, _ := posts.CountPostsByAuthor(context.Background(), author.ID)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "1000", author.TokenBalance.String())
}

func TestCreatePost_SanitizesMarkup(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 0)

	resp, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{
		Content: `hi<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, resp.Post.Content, "<script>")
}

func TestCreatePost_RequiresMembershipForCommunityPosts(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 0)
	creator := fx.users.addUser("0xcreator", 0)

	community := &model.Community{
		Name:         "tokens",
		TokenAddress: "0xttt",
		CreatorID:    creator.ID,
	}
	require.NoError(t, fx.communities.CreateWithCreator(context.Background(), community, creator.Address))

	_, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{
		Content:     "outsider post",
		CommunityID: community.ID.String(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrActionRejected))
}

func TestCastVote_FirstVoteRewardsAuthorOnce(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 1000)
	voter := fx.users.addUser("0xvoter", 5)

	created, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{Content: "vote on me"})
	require.NoError(t, err)

	postID := mustParseID(t, created.Post.ID)

	resp, err := fx.svc.CastVote(context.Background(), voter.Address, postID, dto.CastVoteRequest{Value: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CurationScore)
	assert.Empty(t, resp.RewardError)

	// post reward +1, vote reward +1
	assert.Equal(t, "1002", author.TokenBalance.String())

	// Re-vote flips the score but never re-rewards.
	resp, err = fx.svc.CastVote(context.Background(), voter.Address, postID, dto.CastVoteRequest{Value: -1})
	require.NoError(t, err)
	assert.Equal(t, -1, resp.CurationScore)
	assert.Equal(t, "1002", author.TokenBalance.String())
	assert.Len(t, fx.ledger.entriesOfType(model.TxTypeReward), 2)
}

func TestCastVote_RequiresMinimumBalance(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 1000)
	broke := fx.users.addUser("0xbroke", 0)

	created, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{Content: "gated voting"})
	require.NoError(t, err)

	_, err = fx.svc.CastVote(context.Background(), broke.Address, mustParseID(t, created.Post.ID), dto.CastVoteRequest{Value: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientFunds))
}

func TestCastVote_SelfVoteDoesNotReward(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 1000)

	created, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{Content: "self vote"})
	require.NoError(t, err)

	_, err = fx.svc.CastVote(context.Background(), author.Address, mustParseID(t, created.Post.ID), dto.CastVoteRequest{Value: 1})
	require.NoError(t, err)

	// Only the posting reward landed.
	assert.Equal(t, "1001", author.TokenBalance.String())
}

func TestGetPost_RedactsGatedContentForNonHolders(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 1000)
	holder := fx.users.addUser("0xholder", 500)
	pauper := fx.users.addUser("0xpauper", 1)

	created, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{
		Content:             "secret alpha",
		IsTokenGated:        true,
		RequiredTokenAmount: "100",
	})
	require.NoError(t, err)
	postID := mustParseID(t, created.Post.ID)

	// Anonymous viewer sees the placeholder.
	got, err := fx.svc.GetPost(context.Background(), "", postID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.Equal(t, LockedContentPlaceholder, got.Content)

	// Under-balance viewer sees the placeholder.
	got, err = fx.svc.GetPost(context.Background(), pauper.Address, postID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.Equal(t, LockedContentPlaceholder, got.Content)

	// Holder above the threshold reads the body.
	got, err = fx.svc.GetPost(context.Background(), holder.Address, postID)
	require.NoError(t, err)
	assert.False(t, got.Locked)
	assert.Equal(t, "secret alpha", got.Content)

	// The author always reads their own content.
	got, err = fx.svc.GetPost(context.Background(), author.Address, postID)
	require.NoError(t, err)
	assert.False(t, got.Locked)
	assert.Equal(t, "secret alpha", got.Content)
}

func TestCreatePost_AppliesAchievementsBeforeReturning(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	communities := newFakeCommunityRepo(users)
	ledger := newFakeLedgerRepo(users)
	rewards := NewRewardService(ledger, chain.NewOffchain(), nil)
	achievements := newFakeAchievementRepo()
	progression := NewAchievementService(achievements, users, posts, rewards, nil)
	limiter := NewRateLimiter(nil, &config.Config{})
	svc := NewPostService(posts, users, communities, ledger, rewards, progression, stubSearch{}, limiter)

	author := users.addUser("0xauthor", 0)
	achievements.addRule(model.Achievement{
		Name: "First Post", Criterion: model.CriterionPostCount, Threshold: 1, Points: 10, XPReward: 100,
	})

	_, err := svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	// The unlock, points, and XP are visible the moment the call returns.
	assert.Equal(t, 10, author.AchievementPoints)
	assert.Equal(t, 100, author.XP)
	n, err := achievements.CountUnlocked(context.Background(), author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateComment_RewardsCommenter(t *testing.T) {
	fx := newPostFixture()
	author := fx.users.addUser("0xauthor", 0)
	commenter := fx.users.addUser("0xcommenter", 10)

	created, err := fx.svc.CreatePost(context.Background(), author.Address, dto.CreatePostRequest{Content: "discuss"})
	require.NoError(t, err)
	postID := mustParseID(t, created.Post.ID)

	resp, err := fx.svc.CreateComment(context.Background(), commenter.Address, postID, dto.CreateCommentRequest{
		Content: "great point",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.RewardError)
	assert.Equal(t, "11", commenter.TokenBalance.String())

	post, err := fx.posts.FindPostByID(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.CommentNum)
}

func TestCreateComment_NonMemberRewardLandsOnAccountBalance(t *testing.T) {
	fx := newPostFixture()
	creator := fx.users.addUser("0xcreator", 0)
	commenter := fx.users.addUser("0xcommenter", 10)

	community := &model.Community{Name: "tokens", TokenAddress: "0xttt", CreatorID: creator.ID}
	require.NoError(t, fx.communities.CreateWithCreator(context.Background(), community, creator.Address))
	fx.ledger.setMembershipBalance(creator.ID, community.ID, 0)

	created, err := fx.svc.CreatePost(context.Background(), creator.Address, dto.CreatePostRequest{
		Content:     "community thread",
		CommunityID: community.ID.String(),
	})
	require.NoError(t, err)
	require.Empty(t, created.RewardError)

	// No membership row exists for the commenter, so the reward must
	// land on the account balance instead of failing.
	resp, err := fx.svc.CreateComment(context.Background(), commenter.Address, mustParseID(t, created.Post.ID), dto.CreateCommentRequest{
		Content: "drive by",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.RewardError)
	assert.Equal(t, "11", commenter.TokenBalance.String())

	entries := fx.ledger.entriesOfType(model.TxTypeReward)
	require.NotEmpty(t, entries)
	assert.Nil(t, entries[len(entries)-1].CommunityID)
}

func TestCreateComment_MemberEarnsCommunityBalance(t *testing.T) {
	fx := newPostFixture()
	creator := fx.users.addUser("0xcreator", 0)
	member := fx.users.addUser("0xmember", 10)

	community := &model.Community{Name: "tokens", TokenAddress: "0xttt", CreatorID: creator.ID}
	require.NoError(t, fx.communities.CreateWithCreator(context.Background(), community, creator.Address))
	fx.ledger.setMembershipBalance(creator.ID, community.ID, 0)

	_, err := fx.communities.Join(context.Background(), &model.Membership{
		UserID:      member.ID,
		CommunityID: community.ID,
	}, member.Address)
	require.NoError(t, err)
	fx.ledger.setMembershipBalance(member.ID, community.ID, 0)

	created, err := fx.svc.CreatePost(context.Background(), creator.Address, dto.CreatePostRequest{
		Content:     "community thread",
		CommunityID: community.ID.String(),
	})
	require.NoError(t, err)

	resp, err := fx.svc.CreateComment(context.Background(), member.Address, mustParseID(t, created.Post.ID), dto.CreateCommentRequest{
		Content: "from inside",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.RewardError)

	// The member earns into the community balance; the account balance
	// stays put.
	bal, err := fx.ledger.GetMembershipBalance(context.Background(), member.ID, community.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", bal.String())
	assert.Equal(t, "10", member.TokenBalance.String())
}
