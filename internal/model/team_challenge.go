package model

type TeamChallengeParticipant struct {
	UserID                 string `json:"user_id"`
	Contribution           int64  `json:"contribution"`
	ContributionPercentage int    `json:"contribution_percentage"`
}

type TeamChallenge struct {
	ID                 string                     `json:"id"`
	Name               string                     `json:"name"`
	Description        string                     `json:"description"`
	CreatorID          string                     `json:"creator_id"`
	TargetValue        int64                      `json:"target_value"`
	CurrentValue       int64                      `json:"current_value"`
	PercentageComplete int                        `json:"percentage_complete"`
	Deadline           string                     `json:"deadline"`
	Status             string                     `json:"status"`
	CoinReward         int64                      `json:"coin_reward"`
	XpReward           int64                      `json:"xp_reward"`
	CompletedAt        string                     `json:"completed_at,omitempty"`
	Participants       []TeamChallengeParticipant `json:"participants"`
}

type CreateTeamChallengeRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	TargetValue    int64    `json:"target_value"`
	Deadline       string   `json:"deadline"`
	CoinReward     int64    `json:"coin_reward"`
	XpReward       int64    `json:"xp_reward"`
	ParticipantIDs []string `json:"participant_ids"`
}

type CreateTeamChallengeResponse struct {
	ID string `json:"id"`
}

type ContributeTeamChallengeRequest struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

type ContributeTeamChallengeResponse struct {
	TeamChallenge TeamChallenge `json:"team_challenge"`
}

type GetTeamChallengeRequest struct {
	ID string `json:"id"`
}

type GetTeamChallengeResponse struct {
	TeamChallenge TeamChallenge `json:"team_challenge"`
}

type GetMyTeamChallengesRequest struct{}

type GetMyTeamChallengesResponse struct {
	TeamChallenges []TeamChallenge `json:"team_challenges"`
}

type ReconcileTeamChallengesRequest struct{}

type ReconcileTeamChallengesResponse struct {
	Completed int `json:"completed"`
	Expired   int `json:"expired"`
}
