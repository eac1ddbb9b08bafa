package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/google/uuid"
)

// In-memory repository doubles. They honor the same contracts as the
// Postgres-backed implementations: idempotent unlocks, one vote row per
// (user, post) pair, and balance moves mirrored into the audit trail.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	// createdCommunities counts per creator, fed by the community fake.
	createdCommunities map[uuid.UUID]int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:              map[uuid.UUID]*model.User{},
		createdCommunities: map[uuid.UUID]int64{},
	}
}

func (f *fakeUserRepo) addUser(address string, balance int64) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{
		ID:           uuid.New(),
		Address:      address,
		TokenBalance: model.NewAmount(balance),
		Level:        1,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetOrCreateByAddress(ctx context.Context, address string) (*model.User, error) {
	if u, err := f.FindByAddress(ctx, address); err == nil {
		return u, nil
	}
	u := *f.addUser(address, 0)
	return &u, nil
}

// Lookups return copies, like the row scans in the real repository.
func (f *fakeUserRepo) FindByAddress(_ context.Context, address string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Address == address {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeUserRepo) SetLensHandle(_ context.Context, id uuid.UUID, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.LensHandle = &handle
	}
	return nil
}

func (f *fakeUserRepo) AddAchievementPoints(_ context.Context, id uuid.UUID, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperror.ErrNotFound
	}
	u.AchievementPoints += points
	return nil
}

func (f *fakeUserRepo) GrantXP(_ context.Context, id uuid.UUID, xp int) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return 0, 0, apperror.ErrNotFound
	}
	u.XP += xp
	levelsGained := 0
	for u.XP >= u.NextLevelXP() {
		u.XP -= u.NextLevelXP()
		u.Level++
		levelsGained++
	}
	return levelsGained, u.Level, nil
}

func (f *fakeUserRepo) TopByAchievementPoints(_ context.Context, limit int) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].AchievementPoints > out[i].AchievementPoints {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUserRepo) CountCreatedCommunities(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createdCommunities[id], nil
}

type fakeLedgerRepo struct {
	mu      sync.Mutex
	users   *fakeUserRepo
	entries []repository.LedgerEntry
	// memberships mirrors per-community balances keyed user|community.
	memberships map[string]model.Amount
}

func newFakeLedgerRepo(users *fakeUserRepo) *fakeLedgerRepo {
	return &fakeLedgerRepo{
		users:       users,
		memberships: map[string]model.Amount{},
	}
}

func membershipKey(userID, communityID uuid.UUID) string {
	return userID.String() + "|" + communityID.String()
}

// setMembershipBalance seeds a membership row the way a join does; the
// guarded credit below refuses to invent one.
func (f *fakeLedgerRepo) setMembershipBalance(userID, communityID uuid.UUID, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberships[membershipKey(userID, communityID)] = model.NewAmount(amount)
}

func (f *fakeLedgerRepo) Credit(_ context.Context, entry repository.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.CommunityID != nil {
		key := membershipKey(entry.UserID, *entry.CommunityID)
		if _, ok := f.memberships[key]; !ok {
			return apperror.ErrNotFound
		}
		f.memberships[key] = f.memberships[key].Add(entry.Amount)
	} else {
		f.users.mu.Lock()
		u, ok := f.users.users[entry.UserID]
		if !ok {
			f.users.mu.Unlock()
			return apperror.ErrNotFound
		}
		u.TokenBalance = u.TokenBalance.Add(entry.Amount)
		f.users.mu.Unlock()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedgerRepo) Debit(_ context.Context, entry repository.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.CommunityID != nil {
		key := membershipKey(entry.UserID, *entry.CommunityID)
		if _, ok := f.memberships[key]; !ok {
			return apperror.ErrNotFound
		}
		if f.memberships[key].Cmp(entry.Amount) < 0 {
			return apperror.ErrInsufficientFunds
		}
		f.memberships[key] = f.memberships[key].Sub(entry.Amount)
	} else {
		f.users.mu.Lock()
		u, ok := f.users.users[entry.UserID]
		if !ok {
			f.users.mu.Unlock()
			return apperror.ErrNotFound
		}
		if u.TokenBalance.Cmp(entry.Amount) < 0 {
			f.users.mu.Unlock()
			return apperror.ErrInsufficientFunds
		}
		u.TokenBalance = u.TokenBalance.Sub(entry.Amount)
		f.users.mu.Unlock()
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedgerRepo) GetBalance(ctx context.Context, userID uuid.UUID) (model.Amount, error) {
	u, err := f.users.FindByID(ctx, userID)
	if err != nil {
		return model.Amount{}, err
	}
	return u.TokenBalance, nil
}

func (f *fakeLedgerRepo) GetMembershipBalance(_ context.Context, userID, communityID uuid.UUID) (model.Amount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberships[membershipKey(userID, communityID)], nil
}

func (f *fakeLedgerRepo) GetTransactionsByAddress(_ context.Context, address string, limit int) ([]model.TokenTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.TokenTransaction{}
	for _, e := range f.entries {
		if e.ToAddress == address || e.FromAddress == address {
			out = append(out, model.TokenTransaction{
				FromAddress: e.FromAddress,
				ToAddress:   e.ToAddress,
				Amount:      e.Amount,
				TxType:      e.TxType,
				TxHash:      e.TxHash,
			})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLedgerRepo) entriesOfType(txType string) []repository.LedgerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []repository.LedgerEntry{}
	for _, e := range f.entries {
		if e.TxType == txType {
			out = append(out, e)
		}
	}
	return out
}

type fakePostRepo struct {
	mu       sync.Mutex
	posts    map[uuid.UUID]*model.Post
	comments map[uuid.UUID][]model.Comment
	votes    map[string]*model.Vote
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:    map[uuid.UUID]*model.Post{},
		comments: map[uuid.UUID][]model.Comment{},
		votes:    map[string]*model.Vote{},
	}
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) FindPostByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakePostRepo) ListPosts(_ context.Context, filter dto.PostFilter) ([]model.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Post{}
	for _, p := range f.posts {
		if filter.CommunityID != "" {
			if p.CommunityID == nil || p.CommunityID.String() != filter.CommunityID {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	f.comments[comment.PostID] = append(f.comments[comment.PostID], *comment)
	if p, ok := f.posts[comment.PostID]; ok {
		p.CommentNum++
	}
	return nil
}

func (f *fakePostRepo) ListComments(_ context.Context, postID uuid.UUID) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comments[postID], nil
}

func (f *fakePostRepo) UpsertVote(_ context.Context, vote *model.Vote) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := vote.UserID.String() + "|" + vote.PostID.String()
	if existing, ok := f.votes[key]; ok {
		existing.Value = vote.Value
		return false, nil
	}
	if vote.ID == uuid.Nil {
		vote.ID = uuid.New()
	}
	f.votes[key] = vote
	return true, nil
}

func (f *fakePostRepo) RefreshCurationScore(_ context.Context, postID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	score := 0
	for _, v := range f.votes {
		if v.PostID == postID {
			score += v.Value
		}
	}
	if p, ok := f.posts[postID]; ok {
		p.CurationScore = score
	}
	return score, nil
}

func (f *fakePostRepo) IncrementLikes(_ context.Context, postID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[postID]
	if !ok {
		return apperror.ErrNotFound
	}
	p.Likes++
	return nil
}

func (f *fakePostRepo) CountPostsByAuthor(_ context.Context, authorID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (f *fakePostRepo) CountCommentsByAuthor(_ context.Context, authorID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, cs := range f.comments {
		for _, c := range cs {
			if c.AuthorID == authorID {
				n++
			}
		}
	}
	return n, nil
}

func (f *fakePostRepo) CountLikesReceived(_ context.Context, authorID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			n += int64(p.Likes)
		}
	}
	return n, nil
}

type fakeCommunityRepo struct {
	mu          sync.Mutex
	users       *fakeUserRepo
	communities map[uuid.UUID]*model.Community
	memberships map[string]*model.Membership
}

func newFakeCommunityRepo(users *fakeUserRepo) *fakeCommunityRepo {
	return &fakeCommunityRepo{
		users:       users,
		communities: map[uuid.UUID]*model.Community{},
		memberships: map[string]*model.Membership{},
	}
}

func (f *fakeCommunityRepo) CreateWithCreator(_ context.Context, community *model.Community, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if community.ID == uuid.Nil {
		community.ID = uuid.New()
	}
	f.communities[community.ID] = community
	f.memberships[membershipKey(community.CreatorID, community.ID)] = &model.Membership{
		ID:           uuid.New(),
		UserID:       community.CreatorID,
		CommunityID:  community.ID,
		TokenBalance: community.InitialTokenAmount,
	}
	f.users.mu.Lock()
	f.users.createdCommunities[community.CreatorID]++
	f.users.mu.Unlock()
	return nil
}

func (f *fakeCommunityRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.communities[id]; ok {
		return c, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeCommunityRepo) FindByName(_ context.Context, name string) (*model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.communities {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeCommunityRepo) List(_ context.Context) ([]model.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Community{}
	for _, c := range f.communities {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCommunityRepo) Join(_ context.Context, membership *model.Membership, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := membershipKey(membership.UserID, membership.CommunityID)
	if _, ok := f.memberships[key]; ok {
		return false, nil
	}
	if membership.ID == uuid.Nil {
		membership.ID = uuid.New()
	}
	f.memberships[key] = membership
	return true, nil
}

func (f *fakeCommunityRepo) FindMembership(_ context.Context, userID, communityID uuid.UUID) (*model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.memberships[membershipKey(userID, communityID)]; ok {
		return m, nil
	}
	return nil, nil
}

func (f *fakeCommunityRepo) MemberCount(_ context.Context, communityID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.memberships {
		if m.CommunityID == communityID {
			n++
		}
	}
	return n, nil
}

type fakeChallengeRepo struct {
	mu             sync.Mutex
	challenges     map[uuid.UUID]*model.Challenge
	userChallenges map[uuid.UUID]*model.UserChallenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{
		challenges:     map[uuid.UUID]*model.Challenge{},
		userChallenges: map[uuid.UUID]*model.UserChallenge{},
	}
}

func (f *fakeChallengeRepo) addChallenge(title string, reward int64) *model.Challenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &model.Challenge{
		ID:          uuid.New(),
		Title:       title,
		TokenReward: model.NewAmount(reward),
		IsActive:    true,
	}
	f.challenges[c.ID] = c
	return c
}

func (f *fakeChallengeRepo) ListActive(_ context.Context) ([]model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Challenge{}
	for _, c := range f.challenges {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChallengeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.challenges[id]; ok {
		return c, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeChallengeRepo) GetUserChallenge(_ context.Context, userID, challengeID uuid.UUID) (*model.UserChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, uc := range f.userChallenges {
		if uc.UserID == userID && uc.ChallengeID == challengeID {
			return uc, nil
		}
	}
	return nil, nil
}

func (f *fakeChallengeRepo) CreateUserChallenge(_ context.Context, uc *model.UserChallenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if uc.ID == uuid.Nil {
		uc.ID = uuid.New()
	}
	f.userChallenges[uc.ID] = uc
	return nil
}

func (f *fakeChallengeRepo) MarkCompleted(_ context.Context, id uuid.UUID, progress int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uc, ok := f.userChallenges[id]
	if !ok {
		return false, apperror.ErrNotFound
	}
	if uc.Completed {
		return false, nil
	}
	uc.Progress = progress
	uc.Completed = true
	return true, nil
}

func (f *fakeChallengeRepo) SetProgress(_ context.Context, id uuid.UUID, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	uc, ok := f.userChallenges[id]
	if !ok {
		return apperror.ErrNotFound
	}
	uc.Progress = progress
	return nil
}

func (f *fakeChallengeRepo) ListUserChallenges(_ context.Context, userID uuid.UUID) ([]model.UserChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.UserChallenge{}
	for _, uc := range f.userChallenges {
		if uc.UserID == userID {
			out = append(out, *uc)
		}
	}
	return out, nil
}

type fakeAchievementRepo struct {
	mu      sync.Mutex
	rules   []model.Achievement
	unlocks map[string]bool
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{unlocks: map[string]bool{}}
}

func (f *fakeAchievementRepo) addRule(rule model.Achievement) model.Achievement {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	f.rules = append(f.rules, rule)
	return rule
}

func (f *fakeAchievementRepo) ListAll(_ context.Context) ([]model.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Achievement{}, f.rules...), nil
}

func (f *fakeAchievementRepo) Unlock(_ context.Context, userID, achievementID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID.String() + "|" + achievementID.String()
	if f.unlocks[key] {
		return false, nil
	}
	f.unlocks[key] = true
	return true, nil
}

func (f *fakeAchievementRepo) ListUnlocked(_ context.Context, userID uuid.UUID) ([]model.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Achievement{}
	for _, r := range f.rules {
		if f.unlocks[userID.String()+"|"+r.ID.String()] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) ListUnlockedBatch(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]model.Achievement, error) {
	out := map[uuid.UUID][]model.Achievement{}
	for _, id := range userIDs {
		unlocked, err := f.ListUnlocked(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = unlocked
	}
	return out, nil
}

func (f *fakeAchievementRepo) CountUnlocked(ctx context.Context, userID uuid.UUID) (int64, error) {
	unlocked, err := f.ListUnlocked(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(unlocked)), nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Notification{}
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkAsRead(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return apperror.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, notif := range f.notifications {
		if notif.UserID == userID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

// failingTokens rejects every contract call.
type failingTokens struct{}

func (failingTokens) BalanceOf(context.Context, string, string) (*big.Int, error) {
	return nil, fmt.Errorf("provider down")
}

func (failingTokens) Mint(context.Context, string, string, *big.Int) (string, error) {
	return "", fmt.Errorf("provider down")
}

func (failingTokens) Transfer(context.Context, string, string, *big.Int) (string, error) {
	return "", fmt.Errorf("provider down")
}

func (failingTokens) DeployToken(context.Context, string, string, *big.Int) (string, string, error) {
	return "", "", fmt.Errorf("provider down")
}

// stubAchievements is a no-op progression engine for tests that exercise
// content flows in isolation.
type stubAchievements struct{}

func (stubAchievements) Evaluate(context.Context, uuid.UUID) ([]model.Achievement, error) {
	return nil, nil
}
func (stubAchievements) EvaluateBestEffort(context.Context, uuid.UUID) {}

// stubSearch drops index writes and returns nothing.
type stubSearch struct{}

func (stubSearch) IndexPost(*model.Post) error { return nil }
func (stubSearch) DeletePost(string) error     { return nil }
func (stubSearch) Search(string, string, int) ([]string, error) {
	return nil, nil
}
