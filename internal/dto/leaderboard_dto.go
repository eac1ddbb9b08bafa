package dto

type LeaderboardEntry struct {
	Rank              int      `json:"rank"`
	Address           string   `json:"address"`
	LensHandle        *string  `json:"lens_handle,omitempty"`
	AchievementPoints int      `json:"achievement_points"`
	TokenBalance      string   `json:"token_balance"`
	Level             int      `json:"level"`
	Achievements      []string `json:"achievements"`
}

type AchievementProgress struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
	XPReward    int    `json:"xp_reward"`
	TokenReward string `json:"token_reward"`
	Icon        string `json:"icon"`
	IsCompleted bool   `json:"is_completed"`
}

type UserProgressResponse struct {
	Level                 int                   `json:"level"`
	XP                    int                   `json:"xp"`
	NextLevelXP           int                   `json:"next_level_xp"`
	AchievementPoints     int                   `json:"achievement_points"`
	TotalAchievements     int64                 `json:"total_achievements"`
	CompletedAchievements int64                 `json:"completed_achievements"`
	Achievements          []AchievementProgress `json:"achievements"`
}
