package dto

type NonceRequest struct {
	Address string `json:"address" binding:"required,eth_addr"`
}

type NonceResponse struct {
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}

type VerifyRequest struct {
	Address   string `json:"address" binding:"required,eth_addr"`
	Signature string `json:"signature" binding:"required"`
}

type VerifyResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Address    string `json:"address" binding:"required,eth_addr"`
	LensHandle string `json:"lens_handle"`
}

type UserResponse struct {
	ID                string  `json:"id"`
	Address           string  `json:"address"`
	LensHandle        *string `json:"lens_handle,omitempty"`
	TokenBalance      string  `json:"token_balance"`
	AchievementPoints int     `json:"achievement_points"`
	XP                int     `json:"xp"`
	Level             int     `json:"level"`
}
