package cron

import (
	"context"
	"time"

	"github.com/stunity/backend/internal/domain"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/pkg/dateutil"
	"github.com/stunity/backend/pkg/xcontext"
)

type ExpireChallengesCronJob struct {
	challengeDomain domain.ChallengeDomain
}

func NewExpireChallengesCronJob(challengeDomain domain.ChallengeDomain) *ExpireChallengesCronJob {
	return &ExpireChallengesCronJob{challengeDomain: challengeDomain}
}

func (job *ExpireChallengesCronJob) Do(ctx context.Context) {
	resp, err := job.challengeDomain.Expire(ctx, &model.ExpireChallengesRequest{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot expire challenges: %v", err)
		return
	}

	if resp.Expired > 0 {
		xcontext.Logger(ctx).Infof("Expired %d challenges", resp.Expired)
	}
}

func (job *ExpireChallengesCronJob) RunNow() bool {
	return true
}

func (job *ExpireChallengesCronJob) Next() time.Time {
	return dateutil.NextHour(time.Now())
}
