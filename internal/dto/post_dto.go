package dto

import "time"

type CreatePostRequest struct {
	Content             string `json:"content" binding:"required,min=1,max=10000"`
	CommunityID         string `json:"community_id"`
	IsTokenGated        bool   `json:"is_token_gated"`
	RequiredTokenAmount string `json:"required_token_amount"`
}

type PostResponse struct {
	ID                  string        `json:"id"`
	Author              *UserResponse `json:"author,omitempty"`
	CommunityID         string        `json:"community_id,omitempty"`
	Content             string        `json:"content"`
	Likes               int           `json:"likes"`
	Comments            int           `json:"comments"`
	CurationScore       int           `json:"curation_score"`
	IsTokenGated        bool          `json:"is_token_gated"`
	RequiredTokenAmount string        `json:"required_token_amount"`
	Locked              bool          `json:"locked"`
	CreatedAt           time.Time     `json:"created_at"`
}

// CreatePostResponse reports the created post plus the reward outcome, so
// a client can tell "recorded but unrewarded" apart from success.
type CreatePostResponse struct {
	Post        PostResponse `json:"post"`
	RewardError string       `json:"reward_error,omitempty"`
}

type PostFilter struct {
	CommunityID string `form:"community_id"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

type CommentResponse struct {
	ID        string        `json:"id"`
	PostID    string        `json:"post_id"`
	Author    *UserResponse `json:"author,omitempty"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

type CreateCommentResponse struct {
	Comment     CommentResponse `json:"comment"`
	RewardError string          `json:"reward_error,omitempty"`
}

type CastVoteRequest struct {
	Value int `json:"value" binding:"required,oneof=-1 1"`
}

type CastVoteResponse struct {
	CurationScore int    `json:"curation_score"`
	RewardError   string `json:"reward_error,omitempty"`
}

type SearchPostsRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
}
