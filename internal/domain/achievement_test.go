package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stunity/backend/internal/domain/criteria"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/testutil"
)

func newAchievementDomainForTest() (*achievementDomain, ledger.Ledger) {
	userStatsRepo := repository.NewUserStatsRepository()
	challengeRepo := repository.NewChallengeRepository()
	coinLedger := ledger.New(repository.NewCurrencyRepository())
	domain := NewAchievementDomain(
		repository.NewAchievementRepository(),
		userStatsRepo,
		criteria.NewFactory(userStatsRepo, challengeRepo),
		coinLedger,
	)

	return domain, coinLedger
}

func Test_achievementDomain_Unlock(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newAchievementDomainForTest()

	achievement := testutil.InsertAchievement(ctx, entity.Achievement{
		CoinReward: 500,
		XpReward:   100,
	})

	resp, err := domain.Unlock(ctx, &model.UnlockAchievementRequest{AchievementID: achievement.ID})
	require.NoError(t, err)
	require.True(t, resp.Achievement.IsUnlocked)
	require.Equal(t, 100, resp.Achievement.Progress)
	require.NotEmpty(t, resp.Achievement.UnlockedAt)

	// Unlocking again is a no-op, rewards are granted exactly once.
	resp, err = domain.Unlock(ctx, &model.UnlockAchievementRequest{AchievementID: achievement.ID})
	require.NoError(t, err)
	require.True(t, resp.Achievement.IsUnlocked)

	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(500), balance)

	stats, err := domain.userStatsRepo.Get(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(100), stats.Xp)
}

func Test_achievementDomain_Unlock_notFound(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, _ := newAchievementDomainForTest()

	_, err := domain.Unlock(ctx, &model.UnlockAchievementRequest{AchievementID: "bogus"})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_achievementDomain_UpdateProgress(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newAchievementDomainForTest()

	achievement := testutil.InsertAchievement(ctx, entity.Achievement{CoinReward: 200})

	var errx errorx.Error
	_, err := domain.UpdateProgress(ctx, &model.UpdateAchievementProgressRequest{
		AchievementID: achievement.ID, Progress: 120,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	resp, err := domain.UpdateProgress(ctx, &model.UpdateAchievementProgressRequest{
		AchievementID: achievement.ID, Progress: 50,
	})
	require.NoError(t, err)
	require.False(t, resp.Achievement.IsUnlocked)
	require.Equal(t, 50, resp.Achievement.Progress)

	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)

	// Reaching 100 unlocks and grants the rewards.
	resp, err = domain.UpdateProgress(ctx, &model.UpdateAchievementProgressRequest{
		AchievementID: achievement.ID, Progress: 100,
	})
	require.NoError(t, err)
	require.True(t, resp.Achievement.IsUnlocked)

	balance, err = coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(200), balance)

	// An unlocked achievement ignores further progress updates.
	resp, err = domain.UpdateProgress(ctx, &model.UpdateAchievementProgressRequest{
		AchievementID: achievement.ID, Progress: 10,
	})
	require.NoError(t, err)
	require.True(t, resp.Achievement.IsUnlocked)
	require.Equal(t, 100, resp.Achievement.Progress)
}

func Test_achievementDomain_Evaluate(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newAchievementDomainForTest()

	testutil.InsertUserStats(ctx, entity.UserStats{UserID: "user1", GradeAverage: 90, PostCount: 2})

	satisfied := testutil.InsertAchievement(ctx, entity.Achievement{
		Title:      "Honor Roll",
		CoinReward: 100,
		Criteria: entity.Array[entity.CriterionNode]{
			{
				Type: entity.CompositeCriterion,
				Data: entity.Map{
					"logic": "or",
					"children": []entity.CriterionNode{
						{Type: entity.SocialCriterion, Data: entity.Map{"min_posts": 10}},
						{Type: entity.GradeCriterion, Data: entity.Map{"min_average": 85.0}},
					},
				},
			},
		},
	})

	testutil.InsertAchievement(ctx, entity.Achievement{
		Title: "Perfect Attendance",
		Criteria: entity.Array[entity.CriterionNode]{
			{Type: entity.AttendanceCriterion, Data: entity.Map{"min_streak": 5}},
		},
	})

	resp, err := domain.Evaluate(ctx, &model.EvaluateAchievementsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Unlocked, 1)
	require.Equal(t, satisfied.ID, resp.Unlocked[0].ID)
	require.True(t, resp.Unlocked[0].IsUnlocked)

	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	// A second evaluation skips the already unlocked achievement.
	resp, err = domain.Evaluate(ctx, &model.EvaluateAchievementsRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Unlocked)

	balance, err = coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)
}
