package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/dateutil"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/testutil"
)

func newChallengeDomainForTest() (*challengeDomain, ledger.Ledger) {
	coinLedger := ledger.New(repository.NewCurrencyRepository())
	domain := NewChallengeDomain(
		repository.NewChallengeRepository(),
		repository.NewChallengeTemplateRepository(),
		repository.NewUserStatsRepository(),
		coinLedger,
	)

	return domain, coinLedger
}

func Test_challengeDomain_CreateTemplate(t *testing.T) {
	ctx := testutil.MockContextWithUserID("admin")
	domain, _ := newChallengeDomainForTest()

	resp, err := domain.CreateTemplate(ctx, &model.CreateChallengeTemplateRequest{
		Title:       "Solve 10 exercises",
		Type:        "daily",
		Difficulty:  "medium",
		TargetValue: 10,
		Weight:      3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)

	var errx errorx.Error
	_, err = domain.CreateTemplate(ctx, &model.CreateChallengeTemplateRequest{
		Title: "Bad type", Type: "hourly", Difficulty: "easy", TargetValue: 1,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	_, err = domain.CreateTemplate(ctx, &model.CreateChallengeTemplateRequest{
		Title: "Bad target", Type: "daily", Difficulty: "easy", TargetValue: 0,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	templates, err := domain.GetTemplates(ctx, &model.GetChallengeTemplatesRequest{Type: "daily"})
	require.NoError(t, err)
	require.Len(t, templates.Templates, 1)
}

func Test_challengeDomain_DeactivateTemplate(t *testing.T) {
	ctx := testutil.MockContextWithUserID("admin")
	domain, _ := newChallengeDomainForTest()

	resp, err := domain.CreateTemplate(ctx, &model.CreateChallengeTemplateRequest{
		Title: "Read 5 chapters", Type: "weekly", Difficulty: "easy", TargetValue: 5,
	})
	require.NoError(t, err)

	var errx errorx.Error
	_, err = domain.DeactivateTemplate(ctx, &model.DeactivateChallengeTemplateRequest{ID: "bogus"})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)

	_, err = domain.DeactivateTemplate(ctx, &model.DeactivateChallengeTemplateRequest{ID: resp.ID})
	require.NoError(t, err)

	templates, err := domain.GetTemplates(ctx, &model.GetChallengeTemplatesRequest{ActiveOnly: true})
	require.NoError(t, err)
	require.Empty(t, templates.Templates)

	// Retired templates are no longer sampled.
	generated, err := domain.GenerateWeekly(ctx, &model.GenerateWeeklyChallengesRequest{})
	require.NoError(t, err)
	require.Empty(t, generated.Challenges)
}

func Test_challengeDomain_GenerateDaily(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, _ := newChallengeDomainForTest()

	for i := 0; i < 5; i++ {
		testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{
			Base: entity.Base{ID: uuid.NewString()}, Type: entity.ChallengeDaily,
		})
	}

	resp, err := domain.GenerateDaily(ctx, &model.GenerateDailyChallengesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Challenges, 3)

	// Sampled templates are distinct.
	seen := map[string]bool{}
	for _, c := range resp.Challenges {
		require.Equal(t, "active", c.Status)
		require.False(t, seen[c.Template.ID])
		seen[c.Template.ID] = true
	}

	// A second call in the same period tops up nothing.
	resp, err = domain.GenerateDaily(ctx, &model.GenerateDailyChallengesRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Challenges)

	mine, err := domain.GetMyChallenges(ctx, &model.GetMyChallengesRequest{Status: "active"})
	require.NoError(t, err)
	require.Len(t, mine.Challenges, 3)
}

func Test_challengeDomain_GenerateWeekly_smallPool(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, _ := newChallengeDomainForTest()

	testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{Type: entity.ChallengeWeekly})

	// The quota is five but only one template exists.
	resp, err := domain.GenerateWeekly(ctx, &model.GenerateWeeklyChallengesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Challenges, 1)
}

func Test_challengeDomain_UpdateProgress(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newChallengeDomainForTest()

	// Easy template without an explicit coin reward falls back to the
	// difficulty default of 100.
	testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{
		Type: entity.ChallengeDaily, Difficulty: entity.ChallengeEasy, TargetValue: 100,
	})

	generated, err := domain.GenerateDaily(ctx, &model.GenerateDailyChallengesRequest{})
	require.NoError(t, err)
	require.Len(t, generated.Challenges, 1)
	challengeID := generated.Challenges[0].ID

	var errx errorx.Error
	_, err = domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
		ID: challengeID, Increment: 0,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	resp, err := domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
		ID: challengeID, Increment: 90,
	})
	require.NoError(t, err)
	require.Equal(t, 90, resp.Challenge.Progress)
	require.Equal(t, "active", resp.Challenge.Status)

	// Overshooting clamps the progress to the target.
	resp, err = domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
		ID: challengeID, Increment: 20,
	})
	require.NoError(t, err)
	require.Equal(t, 100, resp.Challenge.Progress)
	require.Equal(t, "completed", resp.Challenge.Status)
	require.NotEmpty(t, resp.Challenge.CompletedAt)

	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	// Completed challenges no longer accept progress.
	_, err = domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
		ID: challengeID, Increment: 1,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_challengeDomain_streakBonus(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newChallengeDomainForTest()

	for i := 0; i < 3; i++ {
		testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{
			Base: entity.Base{ID: uuid.NewString()}, Type: entity.ChallengeDaily, TargetValue: 1, CoinReward: 10,
		})
	}

	generated, err := domain.GenerateDaily(ctx, &model.GenerateDailyChallengesRequest{})
	require.NoError(t, err)
	require.Len(t, generated.Challenges, 3)

	for _, c := range generated.Challenges {
		_, err := domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
			ID: c.ID, Increment: 1,
		})
		require.NoError(t, err)
	}

	// Three template rewards plus the daily streak bonus.
	balance, err := coinLedger.Balance(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(3*10+50), balance)

	transactions, err := coinLedger.Transactions(ctx, "user1", 0, 10)
	require.NoError(t, err)

	var bonusCount int
	for _, tx := range transactions {
		if tx.Source == "daily_streak_bonus" {
			bonusCount++
		}
	}
	require.Equal(t, 1, bonusCount)
}

func Test_challengeDomain_streakBonus_weeklyWindow(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, coinLedger := newChallengeDomainForTest()

	// A completion from the Sunday before the current Monday-based week
	// must not count towards this week's quota.
	weekStart := dateutil.NextMonday(time.Now()).AddDate(0, 0, -7)
	staleTemplate := testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{
		Type: entity.ChallengeWeekly, TargetValue: 1, CoinReward: 10,
	})
	require.NoError(t, domain.challengeRepo.Create(ctx, &entity.Challenge{
		Base:        entity.Base{ID: uuid.NewString()},
		UserID:      "user1",
		TemplateID:  staleTemplate.ID,
		Progress:    1,
		Status:      entity.ChallengeCompleted,
		ExpiresAt:   weekStart,
		CompletedAt: weekStart.Add(-time.Hour),
	}))

	for i := 0; i < 5; i++ {
		testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{
			Base: entity.Base{ID: uuid.NewString()}, Type: entity.ChallengeWeekly, TargetValue: 1, CoinReward: 10,
		})
	}

	generated, err := domain.GenerateWeekly(ctx, &model.GenerateWeeklyChallengesRequest{})
	require.NoError(t, err)
	require.Len(t, generated.Challenges, 5)

	for i, c := range generated.Challenges {
		_, err := domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
			ID: c.ID, Increment: 1,
		})
		require.NoError(t, err)

		// The bonus waits for the fifth completion of this week.
		balance, err := coinLedger.Balance(ctx, "user1")
		require.NoError(t, err)
		if i < 4 {
			require.Equal(t, int64((i+1)*10), balance)
		} else {
			require.Equal(t, int64(5*10+1000), balance)
		}
	}

	transactions, err := coinLedger.Transactions(ctx, "user1", 0, 10)
	require.NoError(t, err)

	var bonusCount int
	for _, tx := range transactions {
		if tx.Source == "weekly_streak_bonus" {
			bonusCount++
		}
	}
	require.Equal(t, 1, bonusCount)
}

func Test_challengeDomain_Expire(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	domain, _ := newChallengeDomainForTest()

	template := testutil.InsertChallengeTemplate(ctx, entity.ChallengeTemplate{})
	challenge := &entity.Challenge{
		Base:       entity.Base{ID: uuid.NewString()},
		UserID:     "user1",
		TemplateID: template.ID,
		Status:     entity.ChallengeActive,
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, domain.challengeRepo.Create(ctx, challenge))

	// A stale active challenge refuses progress before the sweep runs.
	var errx errorx.Error
	_, err := domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
		ID: challenge.ID, Increment: 1,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unavailable, errx.Code)

	resp, err := domain.Expire(ctx, &model.ExpireChallengesRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Expired)

	_, err = domain.UpdateProgress(ctx, &model.UpdateChallengeProgressRequest{
		ID: challenge.ID, Increment: 1,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)

	// The sweep is idempotent.
	resp, err = domain.Expire(ctx, &model.ExpireChallengesRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.Expired)
}

func Test_selectWeighted(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	templates := []entity.ChallengeTemplate{
		{Base: entity.Base{ID: "zero"}, Weight: 0},
		{Base: entity.Base{ID: "heavy"}, Weight: 5},
		{Base: entity.Base{ID: "light"}, Weight: 1},
	}

	// Zero-weight templates never enter the pool, so asking for more
	// than the pool holds returns only the eligible ones.
	selected := selectWeighted(templates, 5, rng)
	require.Len(t, selected, 2)
	require.NotEqual(t, selected[0].ID, selected[1].ID)
	for _, s := range selected {
		require.NotEqual(t, "zero", s.ID)
	}

	require.Empty(t, selectWeighted(templates, 0, rng))
	require.Empty(t, selectWeighted(nil, 3, rng))
}
