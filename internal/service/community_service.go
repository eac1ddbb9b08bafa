package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/Hoblayerta/LENSNOMICS/pkg/chain"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultInitialGrant is the membership balance granted on join when the
// community does not configure one.
var DefaultInitialGrant = model.NewAmount(1000)

type CommunityService interface {
	Create(ctx context.Context, creatorAddress string, req dto.CreateCommunityRequest) (*dto.CommunityResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CommunityResponse, error)
	List(ctx context.Context) ([]dto.CommunityResponse, error)
	Join(ctx context.Context, memberAddress string, communityID uuid.UUID) (*dto.JoinCommunityResponse, error)
}

type communityService struct {
	communities  repository.CommunityRepository
	users        repository.UserRepository
	tokens       chain.TokenService
	achievements AchievementService
	sanitizer    *bluemonday.Policy
}

func NewCommunityService(
	communities repository.CommunityRepository,
	users repository.UserRepository,
	tokens chain.TokenService,
	achievements AchievementService,
) CommunityService {
	return &communityService{
		communities:  communities,
		users:        users,
		tokens:       tokens,
		achievements: achievements,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

// Create deploys the community token and registers the community with its
// creator as the first member. A failed deployment leaves nothing behind.
func (s *communityService) Create(ctx context.Context, creatorAddress string, req dto.CreateCommunityRequest) (*dto.CommunityResponse, error) {
	creator, err := s.users.FindByAddress(ctx, strings.ToLower(creatorAddress))
	if err != nil {
		return nil, err
	}

	if existing, err := s.communities.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: community name already taken", apperror.ErrActionRejected)
	}

	required := model.Amount{}
	if req.RequiredTokenAmount != "" {
		required, err = model.ParseAmount(req.RequiredTokenAmount)
		if err != nil || required.Sign() < 0 {
			return nil, fmt.Errorf("%w: invalid required token amount", apperror.ErrInvalidInput)
		}
	}
	initial := DefaultInitialGrant
	if req.InitialTokenAmount != "" {
		initial, err = model.ParseAmount(req.InitialTokenAmount)
		if err != nil || initial.Sign() < 0 {
			return nil, fmt.Errorf("%w: invalid initial token amount", apperror.ErrInvalidInput)
		}
	}

	tokenAddress, deployHash, err := s.tokens.DeployToken(ctx, req.TokenName, strings.ToUpper(req.TokenSymbol), initial.BigInt())
	if err != nil {
		return nil, fmt.Errorf("%w: token deployment failed: %v", apperror.ErrExternalUnavailable, err)
	}
	logger.Sugar.Infow("community token deployed",
		"name", req.Name, "token", tokenAddress, "tx_hash", deployHash)

	community := &model.Community{
		Name:                req.Name,
		Description:         s.sanitizer.Sanitize(req.Description),
		TokenName:           req.TokenName,
		TokenSymbol:         strings.ToUpper(req.TokenSymbol),
		TokenAddress:        tokenAddress,
		RequiredTokenAmount: required,
		InitialTokenAmount:  initial,
		CreatorID:           creator.ID,
	}
	if err := s.communities.CreateWithCreator(ctx, community, creator.Address); err != nil {
		return nil, err
	}
	community.Creator = creator
	community.MemberCount = 1

	s.achievements.EvaluateBestEffort(ctx, creator.ID)

	resp := s.toResponse(community)
	return &resp, nil
}

func (s *communityService) Get(ctx context.Context, id uuid.UUID) (*dto.CommunityResponse, error) {
	community, err := s.communities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community.MemberCount == 0 {
		count, err := s.communities.MemberCount(ctx, community.ID)
		if err != nil {
			logger.Sugar.Warnw("member count load failed", "community", community.ID, "error", err)
		} else {
			community.MemberCount = count
		}
	}
	resp := s.toResponse(community)
	return &resp, nil
}

func (s *communityService) List(ctx context.Context) ([]dto.CommunityResponse, error) {
	communities, err := s.communities.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommunityResponse, 0, len(communities))
	for i := range communities {
		out = append(out, s.toResponse(&communities[i]))
	}
	return out, nil
}

// Join enrolls the member and grants the community's starting balance.
// Re-joining is a no-op reporting the existing membership.
func (s *communityService) Join(ctx context.Context, memberAddress string, communityID uuid.UUID) (*dto.JoinCommunityResponse, error) {
	member, err := s.users.FindByAddress(ctx, strings.ToLower(memberAddress))
	if err != nil {
		return nil, err
	}
	community, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	membership := &model.Membership{
		UserID:       member.ID,
		CommunityID:  community.ID,
		TokenBalance: community.InitialTokenAmount,
	}
	created, err := s.communities.Join(ctx, membership, member.Address)
	if err != nil {
		return nil, err
	}

	if created {
		// Surface the grant on chain too; the ledger already holds it.
		if _, err := s.tokens.Mint(ctx, community.TokenAddress, member.Address, community.InitialTokenAmount.BigInt()); err != nil {
			logger.Sugar.Warnw("join grant mint failed",
				"community", community.ID, "member", member.Address, "error", err)
		}
		s.achievements.EvaluateBestEffort(ctx, member.ID)
		return &dto.JoinCommunityResponse{
			CommunityID:  community.ID.String(),
			TokenBalance: community.InitialTokenAmount.String(),
		}, nil
	}

	existing, err := s.communities.FindMembership(ctx, member.ID, community.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.JoinCommunityResponse{
		CommunityID:   community.ID.String(),
		AlreadyJoined: true,
	}
	if existing != nil {
		resp.TokenBalance = existing.TokenBalance.String()
	}
	return resp, nil
}

func (s *communityService) toResponse(community *model.Community) dto.CommunityResponse {
	resp := dto.CommunityResponse{
		ID:                  community.ID.String(),
		Name:                community.Name,
		Description:         community.Description,
		TokenName:           community.TokenName,
		TokenSymbol:         community.TokenSymbol,
		TokenAddress:        community.TokenAddress,
		RequiredTokenAmount: community.RequiredTokenAmount.String(),
		InitialTokenAmount:  community.InitialTokenAmount.String(),
		MemberCount:         community.MemberCount,
		CreatedAt:           community.CreatedAt,
	}
	if community.Creator != nil {
		resp.CreatorAddress = community.Creator.Address
	}
	return resp
}
