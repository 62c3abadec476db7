package cron

import (
	"context"
	"time"

	"github.com/stunity/backend/internal/domain"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/dateutil"
	"github.com/stunity/backend/pkg/xcontext"
)

type GenerateChallengesCronJob struct {
	challengeDomain domain.ChallengeDomain
	userStatsRepo   repository.UserStatsRepository
}

func NewGenerateChallengesCronJob(
	challengeDomain domain.ChallengeDomain,
	userStatsRepo repository.UserStatsRepository,
) *GenerateChallengesCronJob {
	return &GenerateChallengesCronJob{
		challengeDomain: challengeDomain,
		userStatsRepo:   userStatsRepo,
	}
}

// Do tops every known user up to the daily and weekly challenge quota.
// One user's failure never stops the rest of the batch.
func (job *GenerateChallengesCronJob) Do(ctx context.Context) {
	userIDs, err := job.userStatsRepo.GetAllUserIDs(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user ids: %v", err)
		return
	}

	generated, failed := 0, 0
	for _, userID := range userIDs {
		userCtx := xcontext.WithRequestUserID(ctx, userID)

		daily, err := job.challengeDomain.GenerateDaily(userCtx, &model.GenerateDailyChallengesRequest{})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot generate daily challenges for %s: %v", userID, err)
			failed++
		} else {
			generated += len(daily.Challenges)
		}

		weekly, err := job.challengeDomain.GenerateWeekly(userCtx, &model.GenerateWeeklyChallengesRequest{})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot generate weekly challenges for %s: %v", userID, err)
			failed++
		} else {
			generated += len(weekly.Challenges)
		}
	}

	xcontext.Logger(ctx).Infof(
		"Generated %d challenges for %d users (%d failures)", generated, len(userIDs), failed)
}

func (job *GenerateChallengesCronJob) RunNow() bool {
	return true
}

func (job *GenerateChallengesCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}
