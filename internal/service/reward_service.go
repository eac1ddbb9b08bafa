package service

import (
	"context"
	"fmt"

	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/Hoblayerta/LENSNOMICS/pkg/chain"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/google/uuid"
)

// ContributionReward is the flat token amount credited for a post, a
// comment, and the first vote received on a post.
var ContributionReward = model.NewAmount(1)

// LevelBonus is the flat token amount credited on every level up.
var LevelBonus = model.NewAmount(10)

// RewardGrant describes one reward the engine should apply.
type RewardGrant struct {
	// Recipient is the account being credited.
	Recipient *model.User
	Amount    model.Amount
	TxType    string
	// TokenAddress selects the token contract for the chain call; empty
	// means the platform token.
	TokenAddress string
	// CommunityID routes the credit to the recipient's membership
	// balance rather than the global one.
	CommunityID *uuid.UUID
	// Reason lands in the recipient's notification.
	Reason string
}

// RewardService applies token rewards: a token contract call followed by a
// ledger credit with its audit row. The engine never owns the triggering
// content mutation; when a reward fails the caller keeps the content and
// surfaces the failure separately.
type RewardService interface {
	// Apply returns the transaction hash recorded in the ledger. Any
	// failure wraps ErrRewardFailed.
	Apply(ctx context.Context, grant RewardGrant) (string, error)
}

type rewardService struct {
	ledger        repository.LedgerRepository
	tokens        chain.TokenService
	notifications NotificationService
}

func NewRewardService(ledger repository.LedgerRepository, tokens chain.TokenService, notifications NotificationService) RewardService {
	return &rewardService{
		ledger:        ledger,
		tokens:        tokens,
		notifications: notifications,
	}
}

func (s *rewardService) Apply(ctx context.Context, grant RewardGrant) (string, error) {
	if grant.Recipient == nil {
		return "", fmt.Errorf("%w: no recipient", apperror.ErrRewardFailed)
	}
	if grant.Amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: non-positive amount", apperror.ErrRewardFailed)
	}

	txHash, err := s.tokens.Mint(ctx, grant.TokenAddress, grant.Recipient.Address, grant.Amount.BigInt())
	if err != nil {
		logger.Sugar.Errorw("token mint failed",
			"to", grant.Recipient.Address, "amount", grant.Amount.String(), "tx_type", grant.TxType, "error", err)
		return "", fmt.Errorf("%w: %v", apperror.ErrRewardFailed, err)
	}

	entry := repository.LedgerEntry{
		UserID:      grant.Recipient.ID,
		FromAddress: chain.SystemAddress,
		ToAddress:   grant.Recipient.Address,
		Amount:      grant.Amount,
		TxType:      grant.TxType,
		TxHash:      txHash,
		CommunityID: grant.CommunityID,
	}
	if err := s.ledger.Credit(ctx, entry); err != nil {
		logger.Sugar.Errorw("ledger credit failed after mint",
			"to", grant.Recipient.Address, "tx_hash", txHash, "error", err)
		return "", fmt.Errorf("%w: %v", apperror.ErrRewardFailed, err)
	}

	if grant.Reason != "" {
		notifyBestEffort(ctx, s.notifications, grant.Recipient.ID, grant.Recipient.ID,
			model.NotifRewardReceived, grant.Reason)
	}
	return txHash, nil
}
