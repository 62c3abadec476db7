package model

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	CoinReward  int64  `json:"coin_reward"`
	XpReward    int64  `json:"xp_reward"`
	Progress    int    `json:"progress"`
	IsUnlocked  bool   `json:"is_unlocked"`
	UnlockedAt  string `json:"unlocked_at,omitempty"`
}

type GetAchievementsRequest struct {
	Category string `json:"category"`
}

type GetAchievementsResponse struct {
	Achievements []Achievement `json:"achievements"`
}

type UpdateAchievementProgressRequest struct {
	AchievementID string `json:"achievement_id"`
	Progress      int    `json:"progress"`
}

type UpdateAchievementProgressResponse struct {
	Achievement Achievement `json:"achievement"`
}

type UnlockAchievementRequest struct {
	AchievementID string `json:"achievement_id"`
}

type UnlockAchievementResponse struct {
	Achievement Achievement `json:"achievement"`
}

type EvaluateAchievementsRequest struct{}

type EvaluateAchievementsResponse struct {
	Unlocked []Achievement `json:"unlocked"`
}
