package dto

import "time"

type ChallengeResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TokenReward string     `json:"token_reward"`
	IsActive    bool       `json:"is_active"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
}

type UpdateProgressRequest struct {
	Progress int `json:"progress" binding:"min=0,max=100"`
}

type UpdateProgressResponse struct {
	Progress    int    `json:"progress"`
	Completed   bool   `json:"completed"`
	Rewarded    bool   `json:"rewarded"`
	RewardError string `json:"reward_error,omitempty"`
}
