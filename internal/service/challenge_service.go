package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/google/uuid"
)

const completionProgress = 100

type ChallengeService interface {
	List(ctx context.Context, userAddress string) ([]dto.ChallengeResponse, error)
	// UpdateProgress moves the caller's progress forward and, when it
	// reaches completion, pays the challenge reward exactly once.
	UpdateProgress(ctx context.Context, userAddress string, challengeID uuid.UUID, req dto.UpdateProgressRequest) (*dto.UpdateProgressResponse, error)
}

type challengeService struct {
	challenges    repository.ChallengeRepository
	users         repository.UserRepository
	rewards       RewardService
	notifications NotificationService
}

func NewChallengeService(
	challenges repository.ChallengeRepository,
	users repository.UserRepository,
	rewards RewardService,
	notifications NotificationService,
) ChallengeService {
	return &challengeService{
		challenges:    challenges,
		users:         users,
		rewards:       rewards,
		notifications: notifications,
	}
}

func (s *challengeService) List(ctx context.Context, userAddress string) ([]dto.ChallengeResponse, error) {
	challenges, err := s.challenges.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	progress := map[uuid.UUID]*model.UserChallenge{}
	if userAddress != "" {
		if user, err := s.users.FindByAddress(ctx, strings.ToLower(userAddress)); err == nil {
			ucs, err := s.challenges.ListUserChallenges(ctx, user.ID)
			if err != nil {
				return nil, err
			}
			for i := range ucs {
				progress[ucs[i].ChallengeID] = &ucs[i]
			}
		}
	}

	out := make([]dto.ChallengeResponse, 0, len(challenges))
	for i := range challenges {
		c := &challenges[i]
		resp := dto.ChallengeResponse{
			ID:          c.ID.String(),
			Title:       c.Title,
			Description: c.Description,
			TokenReward: c.TokenReward.String(),
			IsActive:    c.IsActive,
			EndDate:     c.EndDate,
		}
		if uc, ok := progress[c.ID]; ok {
			resp.Progress = uc.Progress
			resp.Completed = uc.Completed
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *challengeService) UpdateProgress(ctx context.Context, userAddress string, challengeID uuid.UUID, req dto.UpdateProgressRequest) (*dto.UpdateProgressResponse, error) {
	user, err := s.users.FindByAddress(ctx, strings.ToLower(userAddress))
	if err != nil {
		return nil, err
	}
	challenge, err := s.challenges.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsActive {
		return nil, fmt.Errorf("%w: challenge is not active", apperror.ErrActionRejected)
	}
	if challenge.EndDate != nil && time.Now().After(*challenge.EndDate) {
		return nil, fmt.Errorf("%w: challenge has ended", apperror.ErrActionRejected)
	}

	uc, err := s.challenges.GetUserChallenge(ctx, user.ID, challenge.ID)
	if err != nil {
		return nil, err
	}
	if uc == nil {
		uc = &model.UserChallenge{
			UserID:      user.ID,
			ChallengeID: challenge.ID,
		}
		if err := s.challenges.CreateUserChallenge(ctx, uc); err != nil {
			return nil, err
		}
	}

	// Completion is one way: once completed the record is frozen.
	if uc.Completed {
		return &dto.UpdateProgressResponse{
			Progress:  uc.Progress,
			Completed: true,
		}, nil
	}

	// Progress never moves backwards.
	progress := req.Progress
	if progress < uc.Progress {
		progress = uc.Progress
	}

	if progress < completionProgress {
		if progress != uc.Progress {
			if err := s.challenges.SetProgress(ctx, uc.ID, progress); err != nil {
				return nil, err
			}
		}
		return &dto.UpdateProgressResponse{Progress: progress}, nil
	}

	flipped, err := s.challenges.MarkCompleted(ctx, uc.ID, completionProgress)
	if err != nil {
		return nil, err
	}

	resp := &dto.UpdateProgressResponse{
		Progress:  completionProgress,
		Completed: true,
	}
	if !flipped {
		// A concurrent update won the completion race and its reward.
		return resp, nil
	}

	if !challenge.TokenReward.IsZero() {
		_, err := s.rewards.Apply(ctx, RewardGrant{
			Recipient: user,
			Amount:    challenge.TokenReward,
			TxType:    model.TxTypeChallengeCompletion,
			Reason:    fmt.Sprintf("Challenge completed: %s", challenge.Title),
		})
		if err != nil {
			resp.RewardError = err.Error()
			return resp, nil
		}
		resp.Rewarded = true
	}
	return resp, nil
}
