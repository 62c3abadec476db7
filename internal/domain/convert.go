package domain

import (
	"math"
	"time"

	mathutil "github.com/pkg/math"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339)
}

func convertTransaction(tx *entity.CurrencyTransaction) model.CurrencyTransaction {
	return model.CurrencyTransaction{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Amount:    tx.Amount,
		Type:      string(tx.Type),
		Source:    tx.Source,
		SourceID:  tx.SourceID,
		CreatedAt: formatTime(tx.CreatedAt),
	}
}

func convertAchievement(
	achievement *entity.Achievement, progress *entity.UserAchievementProgress,
) model.Achievement {
	result := model.Achievement{
		ID:          achievement.ID,
		Title:       achievement.Title,
		Description: achievement.Description,
		Category:    string(achievement.Category),
		CoinReward:  achievement.CoinReward,
		XpReward:    achievement.XpReward,
	}

	if progress != nil {
		result.Progress = progress.Progress
		result.IsUnlocked = progress.IsUnlocked
		result.UnlockedAt = formatTime(progress.UnlockedAt)
	}

	return result
}

func convertChallengeTemplate(template *entity.ChallengeTemplate) model.ChallengeTemplate {
	return model.ChallengeTemplate{
		ID:          template.ID,
		Title:       template.Title,
		Description: template.Description,
		Type:        string(template.Type),
		Difficulty:  string(template.Difficulty),
		TargetValue: template.TargetValue,
		XpReward:    template.XpReward,
		CoinReward:  template.CoinReward,
		Weight:      template.Weight,
		IsActive:    template.IsActive,
	}
}

func convertChallenge(challenge *entity.Challenge) model.Challenge {
	return model.Challenge{
		ID:          challenge.ID,
		Template:    convertChallengeTemplate(&challenge.Template),
		Progress:    challenge.Progress,
		Status:      string(challenge.Status),
		ExpiresAt:   formatTime(challenge.ExpiresAt),
		CompletedAt: formatTime(challenge.CompletedAt),
	}
}

func convertTeamChallenge(challenge *entity.TeamChallenge) model.TeamChallenge {
	var total int64
	for _, p := range challenge.Participants {
		total += p.Contribution
	}

	participants := make([]model.TeamChallengeParticipant, 0, len(challenge.Participants))
	for _, p := range challenge.Participants {
		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(p.Contribution) / float64(total) * 100))
		}

		participants = append(participants, model.TeamChallengeParticipant{
			UserID:                 p.UserID,
			Contribution:           p.Contribution,
			ContributionPercentage: percentage,
		})
	}

	percentageComplete := 0
	if challenge.TargetValue > 0 {
		percentageComplete = mathutil.MinInt(
			int(math.Round(float64(challenge.CurrentValue)/float64(challenge.TargetValue)*100)), 100)
	}

	return model.TeamChallenge{
		ID:                 challenge.ID,
		Name:               challenge.Name,
		Description:        challenge.Description,
		CreatorID:          challenge.CreatorID,
		TargetValue:        challenge.TargetValue,
		CurrentValue:       challenge.CurrentValue,
		PercentageComplete: percentageComplete,
		Deadline:           formatTime(challenge.Deadline),
		Status:             string(challenge.Status),
		CoinReward:         challenge.CoinReward,
		XpReward:           challenge.XpReward,
		CompletedAt:        formatTime(challenge.CompletedAt),
		Participants:       participants,
	}
}

func convertUnlockable(
	unlockable *entity.Unlockable, owned *entity.UserUnlockable,
) model.Unlockable {
	result := model.Unlockable{
		ID:          unlockable.ID,
		Name:        unlockable.Name,
		Description: unlockable.Description,
		Type:        string(unlockable.Type),
		Cost:        unlockable.Cost,
	}

	if unlockable.RequiredAchievementID.Valid {
		result.RequiredAchievementID = unlockable.RequiredAchievementID.String
	}

	if owned != nil {
		result.IsOwned = true
		result.IsEquipped = owned.IsEquipped
	}

	return result
}
