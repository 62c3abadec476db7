package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
)

// InsertChallengeTemplate stores the template after filling unset
// fields with defaults, and returns the stored value.
func InsertChallengeTemplate(
	ctx context.Context, template entity.ChallengeTemplate,
) entity.ChallengeTemplate {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}

	if template.Title == "" {
		template.Title = "Complete 5 quizzes"
	}

	if template.Type == "" {
		template.Type = entity.ChallengeDaily
	}

	if template.Difficulty == "" {
		template.Difficulty = entity.ChallengeEasy
	}

	if template.TargetValue == 0 {
		template.TargetValue = 100
	}

	if template.Weight == 0 {
		template.Weight = 1
	}

	template.IsActive = true
	if err := xcontext.DB(ctx).Create(&template).Error; err != nil {
		panic(err)
	}

	return template
}

func InsertAchievement(ctx context.Context, achievement entity.Achievement) entity.Achievement {
	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}

	if achievement.Title == "" {
		achievement.Title = "First Steps"
	}

	if achievement.Category == "" {
		achievement.Category = entity.AchievementAcademic
	}

	achievement.IsActive = true
	if err := xcontext.DB(ctx).Create(&achievement).Error; err != nil {
		panic(err)
	}

	return achievement
}

func InsertUnlockable(ctx context.Context, unlockable entity.Unlockable) entity.Unlockable {
	if unlockable.ID == "" {
		unlockable.ID = uuid.NewString()
	}

	if unlockable.Name == "" {
		unlockable.Name = "Golden Avatar"
	}

	if unlockable.Type == "" {
		unlockable.Type = entity.UnlockableAvatar
	}

	unlockable.IsActive = true
	if err := xcontext.DB(ctx).Create(&unlockable).Error; err != nil {
		panic(err)
	}

	return unlockable
}

func InsertUserStats(ctx context.Context, stats entity.UserStats) entity.UserStats {
	if stats.Level == 0 {
		stats.Level = 1
	}

	if err := xcontext.DB(ctx).Create(&stats).Error; err != nil {
		panic(err)
	}

	return stats
}

func InsertAttendanceStreak(ctx context.Context, streak entity.AttendanceStreak) entity.AttendanceStreak {
	if err := xcontext.DB(ctx).Create(&streak).Error; err != nil {
		panic(err)
	}

	return streak
}
