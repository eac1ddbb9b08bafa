package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// LockedContentPlaceholder replaces a gated post body for viewers whose
// balance does not meet the post's requirement. Redaction happens on every
// read; the stored body is never rewritten.
const LockedContentPlaceholder = "🔒 Token-gated content"

// MinVoteBalance is the balance a voter must hold to cast any vote.
var MinVoteBalance = model.NewAmount(1)

type PostService interface {
	CreatePost(ctx context.Context, authorAddress string, req dto.CreatePostRequest) (*dto.CreatePostResponse, error)
	GetPost(ctx context.Context, viewerAddress string, id uuid.UUID) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, viewerAddress string, filter dto.PostFilter) (*dto.PaginatedPostResponse, error)
	CreateComment(ctx context.Context, authorAddress string, postID uuid.UUID, req dto.CreateCommentRequest) (*dto.CreateCommentResponse, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]dto.CommentResponse, error)
	CastVote(ctx context.Context, voterAddress string, postID uuid.UUID, req dto.CastVoteRequest) (*dto.CastVoteResponse, error)
	LikePost(ctx context.Context, viewerAddress string, postID uuid.UUID) error
	SearchPosts(ctx context.Context, viewerAddress string, req dto.SearchPostsRequest) ([]dto.PostResponse, error)
}

type postService struct {
	posts        repository.PostRepository
	users        repository.UserRepository
	communities  repository.CommunityRepository
	ledger       repository.LedgerRepository
	rewards      RewardService
	achievements AchievementService
	search       SearchService
	limiter      *RateLimiter
	sanitizer    *bluemonday.Policy
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	communities repository.CommunityRepository,
	ledger repository.LedgerRepository,
	rewards RewardService,
	achievements AchievementService,
	search SearchService,
	limiter *RateLimiter,
) PostService {
	return &postService{
		posts:        posts,
		users:        users,
		communities:  communities,
		ledger:       ledger,
		rewards:      rewards,
		achievements: achievements,
		search:       search,
		limiter:      limiter,
		sanitizer:    bluemonday.UGCPolicy(),
	}
}

func (s *postService) CreatePost(ctx context.Context, authorAddress string, req dto.CreatePostRequest) (*dto.CreatePostResponse, error) {
	author, err := s.users.FindByAddress(ctx, strings.ToLower(authorAddress))
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, author.ID, ActionCreatePost); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:     author.ID,
		Content:      s.sanitizer.Sanitize(req.Content),
		IsTokenGated: req.IsTokenGated,
	}

	var community *model.Community
	if req.CommunityID != "" {
		communityID, err := uuid.Parse(req.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid community id", apperror.ErrInvalidInput)
		}
		community, err = s.communities.FindByID(ctx, communityID)
		if err != nil {
			return nil, err
		}
		membership, err := s.communities.FindMembership(ctx, author.ID, community.ID)
		if err != nil {
			return nil, err
		}
		if membership == nil {
			return nil, fmt.Errorf("%w: join the community before posting", apperror.ErrActionRejected)
		}
		post.CommunityID = &community.ID
	}

	if req.IsTokenGated {
		required := model.NewAmount(1)
		if req.RequiredTokenAmount != "" {
			required, err = model.ParseAmount(req.RequiredTokenAmount)
			if err != nil || required.Sign() <= 0 {
				return nil, fmt.Errorf("%w: invalid required token amount", apperror.ErrInvalidInput)
			}
		}
		post.RequiredTokenAmount = required
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.limiter.Clear(ctx, author.ID, ActionCreatePost)
		return nil, err
	}
	post.Author = author

	resp := &dto.CreatePostResponse{Post: s.toPostResponse(ctx, post, author.Address, nil)}

	// Content survives a failed reward; the client retries the token
	// step, not the post.
	if _, err := s.rewards.Apply(ctx, RewardGrant{
		Recipient:    author,
		Amount:       ContributionReward,
		TxType:       model.TxTypeReward,
		TokenAddress: communityToken(community),
		CommunityID:  post.CommunityID,
		Reason:       "Reward for posting",
	}); err != nil {
		resp.RewardError = err.Error()
	}

	if s.search != nil {
		if err := s.search.IndexPost(post); err != nil {
			logger.Sugar.Warnw("post indexing failed", "post_id", post.ID, "error", err)
		}
	}

	s.achievements.EvaluateBestEffort(ctx, author.ID)
	return resp, nil
}

func (s *postService) GetPost(ctx context.Context, viewerAddress string, id uuid.UUID) (*dto.PostResponse, error) {
	post, err := s.posts.FindPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toPostResponse(ctx, post, viewerAddress, s.viewerBalances(ctx, viewerAddress))
	return &resp, nil
}

func (s *postService) ListPosts(ctx context.Context, viewerAddress string, filter dto.PostFilter) (*dto.PaginatedPostResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	posts, total, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	balances := s.viewerBalances(ctx, viewerAddress)
	data := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		data = append(data, s.toPostResponse(ctx, &posts[i], viewerAddress, balances))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.PaginatedPostResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *postService) CreateComment(ctx context.Context, authorAddress string, postID uuid.UUID, req dto.CreateCommentRequest) (*dto.CreateCommentResponse, error) {
	author, err := s.users.FindByAddress(ctx, strings.ToLower(authorAddress))
	if err != nil {
		return nil, err
	}
	post, err := s.posts.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, author.ID, ActionCreateComment); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  s.sanitizer.Sanitize(req.Content),
	}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		s.limiter.Clear(ctx, author.ID, ActionCreateComment)
		return nil, err
	}
	comment.Author = author

	resp := &dto.CreateCommentResponse{
		Comment: dto.CommentResponse{
			ID:        comment.ID.String(),
			PostID:    comment.PostID.String(),
			Author:    userResponsePtr(author),
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		},
	}

	tokenAddress, rewardCommunity := s.rewardTarget(ctx, author.ID, post)
	if _, err := s.rewards.Apply(ctx, RewardGrant{
		Recipient:    author,
		Amount:       ContributionReward,
		TxType:       model.TxTypeReward,
		TokenAddress: tokenAddress,
		CommunityID:  rewardCommunity,
		Reason:       "Reward for commenting",
	}); err != nil {
		resp.RewardError = err.Error()
	}

	s.achievements.EvaluateBestEffort(ctx, author.ID)
	return resp, nil
}

func (s *postService) ListComments(ctx context.Context, postID uuid.UUID) ([]dto.CommentResponse, error) {
	if _, err := s.posts.FindPostByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		out = append(out, dto.CommentResponse{
			ID:        c.ID.String(),
			PostID:    c.PostID.String(),
			Author:    userResponsePtr(c.Author),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}

// CastVote records or replaces the voter's vote. Only the first vote a
// (voter, post) pair ever lands triggers the author reward; re-votes adjust
// the curation score alone.
func (s *postService) CastVote(ctx context.Context, voterAddress string, postID uuid.UUID, req dto.CastVoteRequest) (*dto.CastVoteResponse, error) {
	voter, err := s.users.FindByAddress(ctx, strings.ToLower(voterAddress))
	if err != nil {
		return nil, err
	}
	post, err := s.posts.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if voter.TokenBalance.Cmp(MinVoteBalance) < 0 {
		return nil, fmt.Errorf("%w: voting requires a token balance of at least %s",
			apperror.ErrInsufficientFunds, MinVoteBalance.String())
	}

	if err := s.limiter.Allow(ctx, voter.ID, ActionCastVote); err != nil {
		return nil, err
	}

	created, err := s.posts.UpsertVote(ctx, &model.Vote{
		UserID: voter.ID,
		PostID: post.ID,
		Value:  req.Value,
	})
	if err != nil {
		return nil, err
	}

	score, err := s.posts.RefreshCurationScore(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CastVoteResponse{CurationScore: score}

	if created && post.AuthorID != voter.ID {
		author, err := s.users.FindByID(ctx, post.AuthorID)
		if err != nil {
			resp.RewardError = err.Error()
			return resp, nil
		}
		tokenAddress, rewardCommunity := s.rewardTarget(ctx, author.ID, post)
		if _, err := s.rewards.Apply(ctx, RewardGrant{
			Recipient:    author,
			Amount:       ContributionReward,
			TxType:       model.TxTypeReward,
			TokenAddress: tokenAddress,
			CommunityID:  rewardCommunity,
			Reason:       "Reward for receiving a vote",
		}); err != nil {
			resp.RewardError = err.Error()
		}
		s.achievements.EvaluateBestEffort(ctx, author.ID)
	}
	return resp, nil
}

func (s *postService) LikePost(ctx context.Context, viewerAddress string, postID uuid.UUID) error {
	if _, err := s.users.FindByAddress(ctx, strings.ToLower(viewerAddress)); err != nil {
		return err
	}
	post, err := s.posts.FindPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.posts.IncrementLikes(ctx, postID); err != nil {
		return err
	}
	s.achievements.EvaluateBestEffort(ctx, post.AuthorID)
	return nil
}

func (s *postService) SearchPosts(ctx context.Context, viewerAddress string, req dto.SearchPostsRequest) ([]dto.PostResponse, error) {
	if s.search == nil {
		return nil, apperror.ErrExternalUnavailable
	}
	ids, err := s.search.Search(req.Query, "", req.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrExternalUnavailable, err)
	}

	balances := s.viewerBalances(ctx, viewerAddress)
	out := make([]dto.PostResponse, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		post, err := s.posts.FindPostByID(ctx, id)
		if err != nil {
			// Index entries can outlive their rows.
			continue
		}
		out = append(out, s.toPostResponse(ctx, post, viewerAddress, balances))
	}
	return out, nil
}

// viewerState carries the viewer's balances for gating checks. A nil state
// means an anonymous viewer.
type viewerState struct {
	user        *model.User
	memberships map[uuid.UUID]model.Amount
}

func (s *postService) viewerBalances(ctx context.Context, viewerAddress string) *viewerState {
	if viewerAddress == "" {
		return nil
	}
	user, err := s.users.FindByAddress(ctx, strings.ToLower(viewerAddress))
	if err != nil {
		return nil
	}
	return &viewerState{user: user, memberships: make(map[uuid.UUID]model.Amount)}
}

// membershipBalance lazily loads and caches the viewer's balance in a
// community.
func (s *postService) membershipBalance(ctx context.Context, state *viewerState, communityID uuid.UUID) model.Amount {
	if bal, ok := state.memberships[communityID]; ok {
		return bal
	}
	var bal model.Amount
	membership, err := s.communities.FindMembership(ctx, state.user.ID, communityID)
	if err == nil && membership != nil {
		bal = membership.TokenBalance
	}
	state.memberships[communityID] = bal
	return bal
}

// toPostResponse shapes a post for the given viewer, redacting gated
// content the viewer's balance does not unlock. Authors always see their
// own content.
func (s *postService) toPostResponse(ctx context.Context, post *model.Post, viewerAddress string, state *viewerState) dto.PostResponse {
	resp := dto.PostResponse{
		ID:                  post.ID.String(),
		Author:              userResponsePtr(post.Author),
		Content:             post.Content,
		Likes:               post.Likes,
		Comments:            post.CommentNum,
		CurationScore:       post.CurationScore,
		IsTokenGated:        post.IsTokenGated,
		RequiredTokenAmount: post.RequiredTokenAmount.String(),
		CreatedAt:           post.CreatedAt,
	}
	if post.CommunityID != nil {
		resp.CommunityID = post.CommunityID.String()
	}
	if !post.IsTokenGated {
		return resp
	}

	isAuthor := post.Author != nil && viewerAddress != "" &&
		strings.EqualFold(post.Author.Address, viewerAddress)
	if isAuthor || s.viewerUnlocks(ctx, post, state) {
		return resp
	}

	resp.Content = LockedContentPlaceholder
	resp.Locked = true
	return resp
}

func (s *postService) viewerUnlocks(ctx context.Context, post *model.Post, state *viewerState) bool {
	if state == nil || state.user == nil {
		return false
	}
	balance := state.user.TokenBalance
	if post.CommunityID != nil {
		balance = s.membershipBalance(ctx, state, *post.CommunityID)
	}
	return balance.Cmp(post.RequiredTokenAmount) >= 0
}

// rewardTarget resolves where a contribution reward on a post lands.
// Members of the post's community earn its token into their membership
// balance; everyone else earns the platform token on their account.
func (s *postService) rewardTarget(ctx context.Context, recipientID uuid.UUID, post *model.Post) (string, *uuid.UUID) {
	if post.CommunityID == nil {
		return "", nil
	}
	membership, err := s.communities.FindMembership(ctx, recipientID, *post.CommunityID)
	if err != nil || membership == nil {
		return "", nil
	}
	community, err := s.communities.FindByID(ctx, *post.CommunityID)
	if err != nil {
		return "", nil
	}
	return community.TokenAddress, post.CommunityID
}

func communityToken(community *model.Community) string {
	if community == nil {
		return ""
	}
	return community.TokenAddress
}

func userResponsePtr(user *model.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	resp := ToUserResponse(user)
	return &resp
}
