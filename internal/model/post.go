package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is authored content, optionally scoped to a community and optionally
// token gated. Counters and the curation score are maintained by the
// content store as votes and comments land.
type Post struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CommunityID *uuid.UUID `gorm:"type:uuid;index" json:"community_id,omitempty"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Likes       int        `gorm:"not null;default:0" json:"likes"`
	CommentNum  int        `gorm:"not null;default:0" json:"comments"`
	// CurationScore is the signed sum of all vote values on this post.
	CurationScore int `gorm:"not null;default:0" json:"curation_score"`
	IsTokenGated  bool `gorm:"not null;default:false" json:"is_token_gated"`
	// RequiredTokenAmount must be met by a viewer's balance or the
	// content is redacted on the read path.
	RequiredTokenAmount Amount    `gorm:"not null;default:0" json:"required_token_amount"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// Vote is one account's signed vote on a post. The composite unique index
// makes a later vote an update of the existing row, never a second row.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_post_vote,priority:1" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_post_vote,priority:2" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
