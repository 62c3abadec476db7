package cron

import (
	"context"
	"time"

	"github.com/stunity/backend/internal/domain"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/pkg/dateutil"
	"github.com/stunity/backend/pkg/xcontext"
)

// ResetLeaderboardCronJob archives and resets every category of one
// period's leaderboard at the period boundary. One instance is
// registered per period.
type ResetLeaderboardCronJob struct {
	leaderboardDomain domain.LeaderboardDomain
	period            entity.LeaderboardPeriod
}

func NewResetLeaderboardCronJob(
	leaderboardDomain domain.LeaderboardDomain,
	period entity.LeaderboardPeriod,
) *ResetLeaderboardCronJob {
	return &ResetLeaderboardCronJob{leaderboardDomain: leaderboardDomain, period: period}
}

func (job *ResetLeaderboardCronJob) Do(ctx context.Context) {
	for _, category := range entity.LeaderboardCategoryList {
		resp, err := job.leaderboardDomain.Reset(ctx, &model.ResetLeaderboardRequest{
			Category: string(category),
			Scope:    string(entity.LeaderboardSchoolWide),
			Period:   string(job.period),
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf(
				"Cannot reset %s %s leaderboard: %v", job.period, category, err)
			continue
		}

		xcontext.Logger(ctx).Infof(
			"Reset %s %s leaderboard: %d entries, %d rewarded",
			job.period, category, resp.Entries, resp.Rewarded)
	}
}

func (job *ResetLeaderboardCronJob) RunNow() bool {
	return false
}

func (job *ResetLeaderboardCronJob) Next() time.Time {
	now := time.Now()
	switch job.period {
	case entity.LeaderboardWeekly:
		return dateutil.NextMonday(now)
	case entity.LeaderboardMonthly:
		return dateutil.NextMonth(now)
	default:
		return dateutil.NextDay(now)
	}
}
