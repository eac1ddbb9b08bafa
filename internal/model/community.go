package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community is a named group minting its own fungible token. Creating a
// community provisions the token on chain and enrolls the creator as the
// first member.
type Community struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	TokenName   string    `gorm:"size:100;not null" json:"token_name"`
	TokenSymbol string    `gorm:"size:10;not null" json:"token_symbol"`
	// TokenAddress is the deployed token contract; unique per community.
	TokenAddress string `gorm:"size:64;uniqueIndex;not null" json:"token_address"`
	// RequiredTokenAmount gates community content for non-holders.
	RequiredTokenAmount Amount `gorm:"not null;default:0" json:"required_token_amount"`
	// InitialTokenAmount is the balance granted on join.
	InitialTokenAmount Amount    `gorm:"not null;default:0" json:"initial_token_amount"`
	CreatorID          uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
	Creator            *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`

	MemberCount int64 `gorm:"-" json:"member_count"`
}

func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Membership joins a user to a community with a per-community balance.
// The composite unique index guarantees at most one row per pair.
type Membership struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member,priority:1" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CommunityID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_member,priority:2" json:"community_id"`
	Community    *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	TokenBalance Amount     `gorm:"not null;default:0" json:"token_balance"`
	JoinedAt     time.Time  `gorm:"autoCreateTime" json:"joined_at"`
}

func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
