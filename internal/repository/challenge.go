package repository

import (
	"context"
	"time"

	"github.com/stunity/backend/internal/entity"
	"github.com/stunity/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GetListChallengeFilter struct {
	UserID string
	Type   entity.ChallengeType
	Status entity.ChallengeStatus
}

type ChallengeCompletionCount struct {
	UserID string
	Total  int64
}

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *entity.Challenge) error
	GetActiveByID(ctx context.Context, id, userID string) (*entity.Challenge, error)
	GetList(ctx context.Context, filter GetListChallengeFilter) ([]entity.Challenge, error)
	CountActive(ctx context.Context, userID string, challengeType entity.ChallengeType) (int64, error)
	CountCompletedSince(ctx context.Context, userID string, challengeType entity.ChallengeType, since time.Time) (int64, error)
	CountCompleted(ctx context.Context, userID string) (int64, error)
	UpdateProgress(ctx context.Context, id string, progress int) error
	Complete(ctx context.Context, id string, progress int, completedAt time.Time) error
	ExpireAllBefore(ctx context.Context, deadline time.Time) (int64, error)
	CompletionCountsSince(ctx context.Context, since time.Time) ([]ChallengeCompletionCount, error)
}

type challengeRepository struct{}

func NewChallengeRepository() *challengeRepository {
	return &challengeRepository{}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *entity.Challenge) error {
	return xcontext.DB(ctx).Create(challenge).Error
}

func (r *challengeRepository) GetActiveByID(ctx context.Context, id, userID string) (*entity.Challenge, error) {
	result := &entity.Challenge{}
	err := xcontext.DB(ctx).
		Preload("Template").
		Where("id=? AND user_id=? AND status=?", id, userID, entity.ChallengeActive).
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *challengeRepository) GetList(
	ctx context.Context, filter GetListChallengeFilter,
) ([]entity.Challenge, error) {
	tx := xcontext.DB(ctx).
		Preload("Template").
		Where("user_id=?", filter.UserID).
		Order("created_at DESC")

	if filter.Status != "" {
		tx = tx.Where("status=?", filter.Status)
	}

	if filter.Type != "" {
		tx = tx.Where(
			"template_id IN (?)",
			xcontext.DB(ctx).
				Model(&entity.ChallengeTemplate{}).
				Select("id").
				Where("type=?", filter.Type),
		)
	}

	var result []entity.Challenge
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *challengeRepository) CountActive(
	ctx context.Context, userID string, challengeType entity.ChallengeType,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Joins("join challenge_templates on challenge_templates.id=challenges.template_id").
		Where("challenges.user_id=? AND challenges.status=?", userID, entity.ChallengeActive).
		Where("challenge_templates.type=?", challengeType).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *challengeRepository) CountCompletedSince(
	ctx context.Context,
	userID string,
	challengeType entity.ChallengeType,
	since time.Time,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Joins("join challenge_templates on challenge_templates.id=challenges.template_id").
		Where("challenges.user_id=? AND challenges.status=?", userID, entity.ChallengeCompleted).
		Where("challenge_templates.type=?", challengeType).
		Where("challenges.completed_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *challengeRepository) CountCompleted(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Where("user_id=? AND status=?", userID, entity.ChallengeCompleted).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *challengeRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Where("id=? AND status=?", id, entity.ChallengeActive).
		Update("progress", progress)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Complete transitions an active challenge to completed. The status
// guard makes the transition happen at most once.
func (r *challengeRepository) Complete(
	ctx context.Context, id string, progress int, completedAt time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Where("id=? AND status=?", id, entity.ChallengeActive).
		Updates(map[string]interface{}{
			"status":       entity.ChallengeCompleted,
			"progress":     progress,
			"completed_at": completedAt,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ExpireAllBefore moves every active challenge whose deadline has
// passed to expired and returns the number of affected rows. Safe to
// run repeatedly; each row leaves the active status exactly once.
func (r *challengeRepository) ExpireAllBefore(ctx context.Context, deadline time.Time) (int64, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Where("status=? AND expires_at <= ?", entity.ChallengeActive, deadline).
		Update("status", entity.ChallengeExpired)

	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func (r *challengeRepository) CompletionCountsSince(
	ctx context.Context, since time.Time,
) ([]ChallengeCompletionCount, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Select("user_id, count(id) as total").
		Where("status=?", entity.ChallengeCompleted).
		Group("user_id").
		Order("total DESC")

	if !since.IsZero() {
		tx = tx.Where("completed_at >= ?", since)
	}

	var result []ChallengeCompletionCount
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
