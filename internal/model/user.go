package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a wallet-address-identified account. Accounts are created on the
// first wallet interaction and never deleted; the global token balance is
// mutated only by the reward engine through the ledger repository.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Address           string    `gorm:"size:64;uniqueIndex;not null" json:"address"`
	LensHandle        *string   `gorm:"size:100" json:"lens_handle,omitempty"`
	TokenBalance      Amount    `gorm:"not null;default:0" json:"token_balance"`
	AchievementPoints int       `gorm:"not null;default:0" json:"achievement_points"`
	XP                int       `gorm:"not null;default:0" json:"xp"`
	Level             int       `gorm:"not null;default:1" json:"level"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Level == 0 {
		u.Level = 1
	}
	return nil
}

// NextLevelXP is the XP needed to reach the next level.
func (u *User) NextLevelXP() int {
	return u.Level * 1000
}
