package criteria

import (
	"context"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/internal/repository"
	"github.com/stunity/backend/pkg/errorx"
	"github.com/stunity/backend/pkg/xcontext"
)

// Factory builds evaluatable criteria out of stored criteria nodes.
type Factory struct {
	userStatsRepo repository.UserStatsRepository
	challengeRepo repository.ChallengeRepository
}

func NewFactory(
	userStatsRepo repository.UserStatsRepository,
	challengeRepo repository.ChallengeRepository,
) Factory {
	return Factory{
		userStatsRepo: userStatsRepo,
		challengeRepo: challengeRepo,
	}
}

func (f Factory) New(ctx context.Context, node entity.CriterionNode) (Criterion, error) {
	var criterion Criterion
	var err error
	switch node.Type {
	case entity.GradeCriterion:
		criterion, err = newGradeCriterion(ctx, f, node.Data)
	case entity.AttendanceCriterion:
		criterion, err = newAttendanceCriterion(ctx, f, node.Data)
	case entity.SocialCriterion:
		criterion, err = newSocialCriterion(ctx, f, node.Data)
	case entity.ChallengeCriterion:
		criterion, err = newChallengeCriterion(ctx, f, node.Data)
	case entity.CompositeCriterion:
		criterion, err = newCompositeCriterion(ctx, f, node.Data)
	default:
		xcontext.Logger(ctx).Debugf("Invalid criterion type %s", node.Type)
		return nil, errorx.New(errorx.BadRequest, "Invalid criterion type %s", node.Type)
	}

	if err != nil {
		return nil, err
	}

	return criterion, nil
}

// Evaluate checks a root criteria list. Every node must be satisfied;
// an achievement with no criteria is satisfied by definition.
func (f Factory) Evaluate(
	ctx context.Context, nodes []entity.CriterionNode, userID string,
) (bool, error) {
	for _, node := range nodes {
		criterion, err := f.New(ctx, node)
		if err != nil {
			return false, err
		}

		ok, err := criterion.Check(ctx, userID)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}
