package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger entry classification tags.
const (
	TxTypeReward              = "reward"
	TxTypeTransfer            = "transfer"
	TxTypeMint                = "mint"
	TxTypeChallengeCompletion = "challenge_completion"
	TxTypeLevelBonus          = "level_bonus"
	TxTypeJoinGrant           = "join_grant"
)

// TokenTransaction is the append-only audit record written alongside every
// balance mutation. Rows are never updated or deleted.
type TokenTransaction struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FromAddress string     `gorm:"size:64;not null" json:"from_address"`
	ToAddress   string     `gorm:"size:64;not null;index" json:"to_address"`
	Amount      Amount     `gorm:"not null" json:"amount"`
	TxType      string     `gorm:"size:50;not null" json:"tx_type"`
	TxHash      string     `gorm:"size:128;uniqueIndex;not null" json:"tx_hash"`
	CommunityID *uuid.UUID `gorm:"type:uuid" json:"community_id,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (t *TokenTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
