package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the reward and achievement engines.
const (
	NotifAchievementUnlocked = "achievement_unlocked"
	NotifLevelUp             = "level_up"
	NotifRewardReceived      = "reward_received"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	EntityID  uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
