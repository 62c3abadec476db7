package repository

import (
	"context"
	"errors"
	"time"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamChallengeRepository interface {
	Create(ctx context.Context, challenge *entity.TeamChallenge) error
	GetByID(ctx context.Context, id string) (*entity.TeamChallenge, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.TeamChallenge, error)
	GetParticipant(ctx context.Context, challengeID, userID string) (*entity.TeamChallengeParticipant, error)
	GetParticipants(ctx context.Context, challengeID string) ([]entity.TeamChallengeParticipant, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.TeamChallenge, error)
	GetOpenList(ctx context.Context) ([]entity.TeamChallenge, error)
	IncreaseContribution(ctx context.Context, challengeID, userID string, amount int64) error
	UpdateCurrentValue(ctx context.Context, challengeID string, value int64) error
	Activate(ctx context.Context, challengeID string) error
	Complete(ctx context.Context, challengeID string, value int64, completedAt time.Time) error
	Expire(ctx context.Context, challengeID string) error
}

type teamChallengeRepository struct{}

func NewTeamChallengeRepository() *teamChallengeRepository {
	return &teamChallengeRepository{}
}

func (r *teamChallengeRepository) Create(ctx context.Context, challenge *entity.TeamChallenge) error {
	return xcontext.DB(ctx).Create(challenge).Error
}

func (r *teamChallengeRepository) GetByID(ctx context.Context, id string) (*entity.TeamChallenge, error) {
	result := &entity.TeamChallenge{}
	err := xcontext.DB(ctx).Preload("Participants").Where("id=?", id).Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetByIDForUpdate takes a row lock on the challenge so concurrent
// contributions serialize on it. Call it inside a transaction.
func (r *teamChallengeRepository) GetByIDForUpdate(
	ctx context.Context, id string,
) (*entity.TeamChallenge, error) {
	result := &entity.TeamChallenge{}
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id=?", id).
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *teamChallengeRepository) GetParticipant(
	ctx context.Context, challengeID, userID string,
) (*entity.TeamChallengeParticipant, error) {
	result := &entity.TeamChallengeParticipant{}
	err := xcontext.DB(ctx).
		Where("team_challenge_id=? AND user_id=?", challengeID, userID).
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *teamChallengeRepository) GetParticipants(
	ctx context.Context, challengeID string,
) ([]entity.TeamChallengeParticipant, error) {
	var result []entity.TeamChallengeParticipant
	err := xcontext.DB(ctx).
		Where("team_challenge_id=?", challengeID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *teamChallengeRepository) GetListByUserID(
	ctx context.Context, userID string,
) ([]entity.TeamChallenge, error) {
	var result []entity.TeamChallenge
	err := xcontext.DB(ctx).
		Preload("Participants").
		Where(
			"id IN (?)",
			xcontext.DB(ctx).
				Model(&entity.TeamChallengeParticipant{}).
				Select("team_challenge_id").
				Where("user_id=?", userID),
		).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetOpenList returns every challenge still accepting contributions.
func (r *teamChallengeRepository) GetOpenList(ctx context.Context) ([]entity.TeamChallenge, error) {
	var result []entity.TeamChallenge
	err := xcontext.DB(ctx).
		Preload("Participants").
		Where("status IN ?", []entity.TeamChallengeStatus{
			entity.TeamChallengePending,
			entity.TeamChallengeActive,
		}).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *teamChallengeRepository) IncreaseContribution(
	ctx context.Context, challengeID, userID string, amount int64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.TeamChallengeParticipant{}).
		Where("team_challenge_id=? AND user_id=?", challengeID, userID).
		Update("contribution", gorm.Expr("contribution + ?", amount))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *teamChallengeRepository) UpdateCurrentValue(
	ctx context.Context, challengeID string, value int64,
) error {
	return xcontext.DB(ctx).
		Model(&entity.TeamChallenge{}).
		Where("id=?", challengeID).
		Update("current_value", value).Error
}

func (r *teamChallengeRepository) Activate(ctx context.Context, challengeID string) error {
	return xcontext.DB(ctx).
		Model(&entity.TeamChallenge{}).
		Where("id=? AND status=?", challengeID, entity.TeamChallengePending).
		Update("status", entity.TeamChallengeActive).Error
}

// Complete transitions a non-terminal challenge to completed. The
// status guard keeps rewards from being distributed twice.
func (r *teamChallengeRepository) Complete(
	ctx context.Context, challengeID string, value int64, completedAt time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.TeamChallenge{}).
		Where("id=? AND status IN ?", challengeID, []entity.TeamChallengeStatus{
			entity.TeamChallengePending,
			entity.TeamChallengeActive,
		}).
		Updates(map[string]interface{}{
			"status":        entity.TeamChallengeCompleted,
			"current_value": value,
			"completed_at":  completedAt,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *teamChallengeRepository) Expire(ctx context.Context, challengeID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.TeamChallenge{}).
		Where("id=? AND status IN ?", challengeID, []entity.TeamChallengeStatus{
			entity.TeamChallengePending,
			entity.TeamChallengeActive,
		}).
		Update("status", entity.TeamChallengeExpired)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
