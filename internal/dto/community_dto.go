package dto

import "time"

type CreateCommunityRequest struct {
	Name                string `json:"name" binding:"required,min=3,max=100"`
	Description         string `json:"description" binding:"required,min=10"`
	TokenName           string `json:"token_name" binding:"required,min=1,max=100"`
	TokenSymbol         string `json:"token_symbol" binding:"required,min=1,max=5"`
	RequiredTokenAmount string `json:"required_token_amount"`
	InitialTokenAmount  string `json:"initial_token_amount"`
}

type CommunityResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	TokenName           string    `json:"token_name"`
	TokenSymbol         string    `json:"token_symbol"`
	TokenAddress        string    `json:"token_address"`
	RequiredTokenAmount string    `json:"required_token_amount"`
	InitialTokenAmount  string    `json:"initial_token_amount"`
	CreatorAddress      string    `json:"creator_address"`
	MemberCount         int64     `json:"member_count"`
	CreatedAt           time.Time `json:"created_at"`
}

type JoinCommunityResponse struct {
	CommunityID   string `json:"community_id"`
	TokenBalance  string `json:"token_balance"`
	AlreadyJoined bool   `json:"already_joined"`
}
