package model

type ChallengeTemplate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Difficulty  string `json:"difficulty"`
	TargetValue int    `json:"target_value"`
	XpReward    int64  `json:"xp_reward"`
	CoinReward  int64  `json:"coin_reward"`
	Weight      int    `json:"weight"`
	IsActive    bool   `json:"is_active"`
}

type Challenge struct {
	ID          string            `json:"id"`
	Template    ChallengeTemplate `json:"template"`
	Progress    int               `json:"progress"`
	Status      string            `json:"status"`
	ExpiresAt   string            `json:"expires_at"`
	CompletedAt string            `json:"completed_at,omitempty"`
}

type CreateChallengeTemplateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Difficulty  string `json:"difficulty"`
	TargetValue int    `json:"target_value"`
	XpReward    int64  `json:"xp_reward"`
	CoinReward  int64  `json:"coin_reward"`
	Weight      int    `json:"weight"`
}

type CreateChallengeTemplateResponse struct {
	ID string `json:"id"`
}

type DeactivateChallengeTemplateRequest struct {
	ID string `json:"id"`
}

type DeactivateChallengeTemplateResponse struct{}

type GetChallengeTemplatesRequest struct {
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	ActiveOnly bool   `json:"active_only"`
}

type GetChallengeTemplatesResponse struct {
	Templates []ChallengeTemplate `json:"templates"`
}

type GenerateDailyChallengesRequest struct{}

type GenerateDailyChallengesResponse struct {
	Challenges []Challenge `json:"challenges"`
}

type GenerateWeeklyChallengesRequest struct{}

type GenerateWeeklyChallengesResponse struct {
	Challenges []Challenge `json:"challenges"`
}

type UpdateChallengeProgressRequest struct {
	ID        string `json:"id"`
	Increment int    `json:"increment"`
}

type UpdateChallengeProgressResponse struct {
	Challenge Challenge `json:"challenge"`
}

type GetMyChallengesRequest struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type GetMyChallengesResponse struct {
	Challenges []Challenge `json:"challenges"`
}

type ExpireChallengesRequest struct{}

type ExpireChallengesResponse struct {
	Expired int64 `json:"expired"`
}
