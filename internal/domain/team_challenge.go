package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stunity/backend/internal/domain/ledger"
	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/model"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	minTeamParticipants = 2
	maxTeamParticipants = 50

	teamChallengeRewardSource = "team_challenge"
)

type TeamChallengeDomain interface {
	Create(ctx context.Context, req *model.CreateTeamChallengeRequest) (*model.CreateTeamChallengeResponse, error)
	Contribute(ctx context.Context, req *model.ContributeTeamChallengeRequest) (*model.ContributeTeamChallengeResponse, error)
	Get(ctx context.Context, req *model.GetTeamChallengeRequest) (*model.GetTeamChallengeResponse, error)
	GetMyTeamChallenges(ctx context.Context, req *model.GetMyTeamChallengesRequest) (*model.GetMyTeamChallengesResponse, error)
	Reconcile(ctx context.Context, req *model.ReconcileTeamChallengesRequest) (*model.ReconcileTeamChallengesResponse, error)
}

type teamChallengeDomain struct {
	teamChallengeRepo repository.TeamChallengeRepository
	userStatsRepo     repository.UserStatsRepository
	ledger            ledger.Ledger
}

func NewTeamChallengeDomain(
	teamChallengeRepo repository.TeamChallengeRepository,
	userStatsRepo repository.UserStatsRepository,
	ledger ledger.Ledger,
) *teamChallengeDomain {
	return &teamChallengeDomain{
		teamChallengeRepo: teamChallengeRepo,
		userStatsRepo:     userStatsRepo,
		ledger:            ledger,
	}
}

func (d *teamChallengeDomain) Create(
	ctx context.Context, req *model.CreateTeamChallengeRequest,
) (*model.CreateTeamChallengeResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	if req.TargetValue <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Target value must be positive")
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid deadline")
	}

	if deadline.Before(time.Now()) {
		return nil, errorx.New(errorx.BadRequest, "Deadline must be in the future")
	}

	// The participant set is the creator plus the given ids,
	// deduplicated. It is fixed for the challenge's lifetime.
	creatorID := xcontext.RequestUserID(ctx)
	userIDs := []string{creatorID}
	for _, id := range req.ParticipantIDs {
		if !slices.Contains(userIDs, id) {
			userIDs = append(userIDs, id)
		}
	}

	if len(userIDs) < minTeamParticipants {
		return nil, errorx.New(errorx.BadRequest,
			"Require at least %d distinct participants", minTeamParticipants)
	}

	if len(userIDs) > maxTeamParticipants {
		return nil, errorx.New(errorx.BadRequest,
			"Allow at most %d participants", maxTeamParticipants)
	}

	challenge := &entity.TeamChallenge{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   creatorID,
		TargetValue: req.TargetValue,
		Deadline:    deadline,
		Status:      entity.TeamChallengePending,
		CoinReward:  req.CoinReward,
		XpReward:    req.XpReward,
	}

	for _, id := range userIDs {
		challenge.Participants = append(challenge.Participants, entity.TeamChallengeParticipant{
			TeamChallengeID: challenge.ID,
			UserID:          id,
		})
	}

	if err := d.teamChallengeRepo.Create(ctx, challenge); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create team challenge: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateTeamChallengeResponse{ID: challenge.ID}, nil
}

func (d *teamChallengeDomain) Contribute(
	ctx context.Context, req *model.ContributeTeamChallengeRequest,
) (*model.ContributeTeamChallengeResponse, error) {
	if req.Amount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be positive")
	}

	// The whole contribution runs under a lock on the challenge row, so
	// two participants contributing at once recompute the total one
	// after the other and a combined total meeting the target completes.
	userID := xcontext.RequestUserID(ctx)
	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	challenge, err := d.teamChallengeRepo.GetByIDForUpdate(txCtx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found team challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get team challenge: %v", err)
		return nil, errorx.Unknown
	}

	if challenge.Status == entity.TeamChallengeCompleted || challenge.Status == entity.TeamChallengeExpired {
		return nil, errorx.New(errorx.Unavailable, "Team challenge is not active")
	}

	if time.Now().After(challenge.Deadline) {
		// Lazily flip a stale open challenge before refusing the
		// contribution.
		if err := d.teamChallengeRepo.Expire(txCtx, challenge.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot expire team challenge: %v", err)
			return nil, errorx.Unknown
		}

		xcontext.WithCommitDBTransaction(txCtx)
		return nil, errorx.New(errorx.Unavailable, "Team challenge has expired")
	}

	if _, err := d.teamChallengeRepo.GetParticipant(txCtx, req.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PermissionDenied, "You are not a participant")
		}

		xcontext.Logger(ctx).Errorf("Cannot get participant: %v", err)
		return nil, errorx.Unknown
	}

	err = d.teamChallengeRepo.IncreaseContribution(txCtx, req.ID, userID, req.Amount)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase contribution: %v", err)
		return nil, errorx.Unknown
	}

	if challenge.Status == entity.TeamChallengePending {
		if err := d.teamChallengeRepo.Activate(txCtx, req.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot activate team challenge: %v", err)
			return nil, errorx.Unknown
		}
	}

	participants, err := d.teamChallengeRepo.GetParticipants(txCtx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participants: %v", err)
		return nil, errorx.Unknown
	}

	var total int64
	for _, p := range participants {
		total += p.Contribution
	}

	if total >= challenge.TargetValue {
		if err := d.complete(txCtx, challenge, participants, total); err != nil {
			return nil, err
		}
	} else {
		if err := d.teamChallengeRepo.UpdateCurrentValue(txCtx, req.ID, total); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update current value: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(txCtx)

	updated, err := d.teamChallengeRepo.GetByID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get team challenge: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ContributeTeamChallengeResponse{TeamChallenge: convertTeamChallenge(updated)}, nil
}

// complete transitions the challenge to completed and distributes the
// rewards. The caller provides the transaction context.
func (d *teamChallengeDomain) complete(
	ctx context.Context,
	challenge *entity.TeamChallenge,
	participants []entity.TeamChallengeParticipant,
	total int64,
) error {
	err := d.teamChallengeRepo.Complete(ctx, challenge.ID, total, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.Unavailable, "Team challenge is not active")
		}

		xcontext.Logger(ctx).Errorf("Cannot complete team challenge: %v", err)
		return errorx.Unknown
	}

	d.distributeRewards(ctx, challenge, participants, total)
	return nil
}

// distributeRewards splits the coin and xp rewards proportionally to
// contribution, rounding every share down. A failure to pay one
// participant does not stop the others.
func (d *teamChallengeDomain) distributeRewards(
	ctx context.Context,
	challenge *entity.TeamChallenge,
	participants []entity.TeamChallengeParticipant,
	total int64,
) {
	if total <= 0 {
		return
	}

	for _, p := range participants {
		coinShare := challenge.CoinReward * p.Contribution / total
		if coinShare > 0 {
			_, err := d.ledger.Credit(ctx, ledger.TransactionInput{
				UserID:   p.UserID,
				Amount:   coinShare,
				Source:   teamChallengeRewardSource,
				SourceID: challenge.ID,
			})
			if err != nil {
				xcontext.Logger(ctx).Warnf(
					"Cannot credit %d coins to %s: %v", coinShare, p.UserID, err)
			}
		}

		xpShare := challenge.XpReward * p.Contribution / total
		if xpShare > 0 {
			if err := d.userStatsRepo.UpsertXp(ctx, p.UserID, xpShare); err != nil {
				xcontext.Logger(ctx).Warnf(
					"Cannot grant %d xp to %s: %v", xpShare, p.UserID, err)
			}
		}
	}
}

func (d *teamChallengeDomain) Get(
	ctx context.Context, req *model.GetTeamChallengeRequest,
) (*model.GetTeamChallengeResponse, error) {
	challenge, err := d.teamChallengeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found team challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get team challenge: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetTeamChallengeResponse{TeamChallenge: convertTeamChallenge(challenge)}, nil
}

func (d *teamChallengeDomain) GetMyTeamChallenges(
	ctx context.Context, req *model.GetMyTeamChallengesRequest,
) (*model.GetMyTeamChallengesResponse, error) {
	challenges, err := d.teamChallengeRepo.GetListByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get team challenges: %v", err)
		return nil, errorx.Unknown
	}

	result := make([]model.TeamChallenge, 0, len(challenges))
	for i := range challenges {
		result = append(result, convertTeamChallenge(&challenges[i]))
	}

	return &model.GetMyTeamChallengesResponse{TeamChallenges: result}, nil
}

// Reconcile sweeps every open team challenge: stale ones expire, the
// others get their current value recomputed from participant
// contributions, completing them if the recomputed total meets the
// target. One broken challenge does not abort the sweep.
func (d *teamChallengeDomain) Reconcile(
	ctx context.Context, req *model.ReconcileTeamChallengesRequest,
) (*model.ReconcileTeamChallengesResponse, error) {
	challenges, err := d.teamChallengeRepo.GetOpenList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get open team challenges: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now()
	completed, expired := 0, 0
	for i := range challenges {
		challenge := &challenges[i]
		if now.After(challenge.Deadline) {
			if err := d.teamChallengeRepo.Expire(ctx, challenge.ID); err != nil {
				xcontext.Logger(ctx).Warnf(
					"Cannot expire team challenge %s: %v", challenge.ID, err)
				continue
			}

			expired++
			continue
		}

		var total int64
		for _, p := range challenge.Participants {
			total += p.Contribution
		}

		txCtx := xcontext.WithDBTransaction(ctx)
		if total >= challenge.TargetValue {
			if err := d.complete(txCtx, challenge, challenge.Participants, total); err != nil {
				xcontext.Logger(ctx).Warnf(
					"Cannot complete team challenge %s: %v", challenge.ID, err)
				xcontext.WithRollbackDBTransaction(txCtx)
				continue
			}

			completed++
		} else if total != challenge.CurrentValue {
			if err := d.teamChallengeRepo.UpdateCurrentValue(txCtx, challenge.ID, total); err != nil {
				xcontext.Logger(ctx).Warnf(
					"Cannot update current value of %s: %v", challenge.ID, err)
				xcontext.WithRollbackDBTransaction(txCtx)
				continue
			}
		}

		xcontext.WithCommitDBTransaction(txCtx)
	}

	return &model.ReconcileTeamChallengesResponse{Completed: completed, Expired: expired}, nil
}
