package cron

import (
	"context"
	"time"

	"github.com/stunity/backend/internal/domain"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/pkg/xcontext"
)

const reconcileInterval = 15 * time.Minute

type ReconcileTeamChallengesCronJob struct {
	teamChallengeDomain domain.TeamChallengeDomain
}

func NewReconcileTeamChallengesCronJob(
	teamChallengeDomain domain.TeamChallengeDomain,
) *ReconcileTeamChallengesCronJob {
	return &ReconcileTeamChallengesCronJob{teamChallengeDomain: teamChallengeDomain}
}

func (job *ReconcileTeamChallengesCronJob) Do(ctx context.Context) {
	resp, err := job.teamChallengeDomain.Reconcile(ctx, &model.ReconcileTeamChallengesRequest{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reconcile team challenges: %v", err)
		return
	}

	if resp.Completed > 0 || resp.Expired > 0 {
		xcontext.Logger(ctx).Infof(
			"Reconciled team challenges: %d completed, %d expired", resp.Completed, resp.Expired)
	}
}

func (job *ReconcileTeamChallengesCronJob) RunNow() bool {
	return true
}

func (job *ReconcileTeamChallengesCronJob) Next() time.Time {
	return time.Now().Add(reconcileInterval)
}
